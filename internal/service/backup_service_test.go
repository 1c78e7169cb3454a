package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-tuition/internal/repository"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/kvstore"
)

type reloadCounter struct {
	calls int
	err   error
}

func (r *reloadCounter) WithWriteLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	r.calls++
	return r.err
}

func newBackupFixture(t *testing.T) (*BackupService, *kvstore.MemoryStore, *reloadCounter) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	reload := &reloadCounter{}
	svc := NewBackupService(repository.NewDocumentRepository(store), reload, "1.0", nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 15, 3, 4, 5, 0, time.UTC) }
	return svc, store, reload
}

func TestSerializeDefaultsMissingKeys(t *testing.T) {
	svc, _, _ := newBackupFixture(t)

	payload, err := svc.Serialize(context.Background())
	require.NoError(t, err)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, "1.0", env["version"])
	assert.Equal(t, "2025-04-15T03:04:05.000Z", env["timestamp"])
	assert.Equal(t, []interface{}{}, env["students"])
	assert.Equal(t, []interface{}{}, env["payments"])
	assert.Nil(t, env["bankConfig"])
	assert.Equal(t, []interface{}{}, env["profiles"])
}

func TestSerializeIgnoresGithubConfigAndAuth(t *testing.T) {
	svc, store, _ := newBackupFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, repository.KeyGithubConfig, `{"token":"ghp_secret"}`))
	require.NoError(t, store.Set(ctx, repository.KeyAuthFlag, "true"))

	payload, err := svc.Serialize(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "ghp_secret")
	assert.NotContains(t, string(payload), "smarttuition_auth")
}

func TestRestoreRoundTrip(t *testing.T) {
	svc, store, reload := newBackupFixture(t)
	ctx := context.Background()
	students := `[{"id":"s1","name":"Nguyễn Văn A","className":"Toán 9","baseFee":500000,"isPaid":false,"balance":-500000,"attendanceCount":0,"attendanceHistory":[],"isSent":false,"note":""}]`
	require.NoError(t, store.Set(ctx, repository.KeyStudents, students))
	require.NoError(t, store.Set(ctx, repository.KeyProfiles, `[{"id":"p1","name":"Mặc định","config":{"bankId":"970422"}}]`))

	payload, err := svc.Serialize(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, repository.KeyStudents, `[]`))
	result, err := svc.Restore(ctx, payload, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Students)
	assert.Len(t, result.KeysWritten, 4)
	assert.JSONEq(t, students, store.Snapshot()[repository.KeyStudents])
	assert.Equal(t, 1, reload.calls)
}

func TestRestoreWithoutStudentsFailsClosed(t *testing.T) {
	svc, store, reload := newBackupFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, repository.KeyPayments, `[{"id":"p"}]`))
	before := store.Snapshot()
	writes := store.Writes()

	_, err := svc.Restore(ctx, []byte(`{"payments":[]}`), true)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidBackup))
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, writes, store.Writes())
	assert.Equal(t, 0, reload.calls)
}

func TestRestoreRejectsNonArrayStudents(t *testing.T) {
	svc, store, _ := newBackupFixture(t)
	for _, body := range []string{`{"students":"not-an-array"}`, `{"students":null}`, `not json`, `{"students":[1,2]}`} {
		_, err := svc.Restore(context.Background(), []byte(body), true)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidBackup), body)
	}
	assert.Equal(t, 0, store.Writes())
}

func TestRestoreRequiresConfirmation(t *testing.T) {
	svc, store, _ := newBackupFixture(t)
	_, err := svc.Restore(context.Background(), []byte(`{"students":[]}`), false)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Equal(t, 0, store.Writes())
}

func TestRestoreLeavesAbsentKeysUntouched(t *testing.T) {
	svc, store, _ := newBackupFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, repository.KeyBankConfig, `{"bankId":"970436"}`))

	result, err := svc.Restore(ctx, []byte(`{"students":[],"payments":[]}`), true)
	require.NoError(t, err)
	assert.Equal(t, []string{repository.KeyStudents, repository.KeyPayments}, result.KeysWritten)
	assert.Equal(t, `{"bankId":"970436"}`, store.Snapshot()[repository.KeyBankConfig])
}

func TestRestoreFlagsFailedReload(t *testing.T) {
	svc, _, reload := newBackupFixture(t)
	reload.err = errors.New("boom")
	result, err := svc.Restore(context.Background(), []byte(`{"students":[]}`), true)
	require.NoError(t, err)
	assert.True(t, result.ReloadRequired)
}

func TestBackupFilename(t *testing.T) {
	svc, _, _ := newBackupFixture(t)
	assert.Equal(t, "SmartTuition_Backup_2025-04-15.json", svc.Filename())
}

func TestRestoreAcceptsLooselyTypedAmounts(t *testing.T) {
	svc, store, _ := newBackupFixture(t)
	body := `{"students":[{"id":"x","name":"An","baseFee":"500000","balance":-450000.4,"attendanceHistory":[]}]}`

	result, err := svc.Restore(context.Background(), []byte(body), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Students)
	assert.Contains(t, store.Snapshot()[repository.KeyStudents], `"baseFee":"500000"`)
}
