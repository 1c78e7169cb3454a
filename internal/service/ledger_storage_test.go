package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-tuition/internal/repository"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/kvstore"
)

func newStoredLedger(t *testing.T, store *kvstore.MemoryStore) (*LedgerService, *repository.DocumentRepository) {
	t.Helper()
	docs := repository.NewDocumentRepository(store)
	svc := NewLedgerService(repository.NewStudentRepository(docs), repository.NewPaymentRepository(docs), LedgerConfig{SeedSessions: 8, ClampSeed: true}, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	require.NoError(t, svc.Init(context.Background()))
	return svc, docs
}

func storedStudents(t *testing.T, store *kvstore.MemoryStore) []map[string]json.RawMessage {
	t.Helper()
	var out []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(store.Snapshot()[repository.KeyStudents]), &out))
	return out
}

func TestEmptyHistoryPersistsAsEmptyList(t *testing.T) {
	store := kvstore.NewMemoryStore()
	svc, _ := newStoredLedger(t, store)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateStudentRequest{Name: "An", Month: "12/2099", BaseFee: 300000}, false)
	require.NoError(t, err)
	_, err = svc.ToggleSent(ctx, created.ID)
	require.NoError(t, err)

	rows := storedStudents(t, store)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `[]`, string(rows[0]["attendanceHistory"]))
	assert.JSONEq(t, `0`, string(rows[0]["attendanceCount"]))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"attendanceHistory":[]`)
}

func TestLegacyCountSurvivesUnrelatedMutation(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, repository.KeyStudents, `[{"id":"a","name":"An","attendanceCount":5},{"id":"b","name":"Bình"}]`))
	svc, _ := newStoredLedger(t, store)

	_, err := svc.ToggleSent(ctx, "b")
	require.NoError(t, err)

	rows := storedStudents(t, store)
	require.Len(t, rows, 2)
	assert.JSONEq(t, `5`, string(rows[0]["attendanceCount"]))
	assert.JSONEq(t, `[]`, string(rows[0]["attendanceHistory"]))

	// A reload must not lose the count either.
	require.NoError(t, svc.Reload(ctx))
	a, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, a.AttendanceCount)

	// Editing attendance switches the record over to its dates.
	a, err = svc.CheckIn(ctx, "a", "2025-04-15")
	require.NoError(t, err)
	assert.Equal(t, 1, a.AttendanceCount)
}

type pausingDocs struct {
	*repository.DocumentRepository
	onStudents func()
}

func (p *pausingDocs) WriteRaw(ctx context.Context, key, value string) error {
	if err := p.DocumentRepository.WriteRaw(ctx, key, value); err != nil {
		return err
	}
	if key == repository.KeyStudents && p.onStudents != nil {
		p.onStudents()
	}
	return nil
}

func TestRestoreBlocksConcurrentMutations(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, repository.KeyStudents, `[{"id":"a","name":"An","attendanceHistory":[]}]`))
	ledgerSvc, docs := newStoredLedger(t, store)

	var wg sync.WaitGroup
	var toggleErr error
	paused := &pausingDocs{DocumentRepository: docs}
	paused.onStudents = func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, toggleErr = ledgerSvc.ToggleSent(ctx, "a")
		}()
		// Give the mutation time to reach the ledger while the restore is
		// still writing the remaining keys.
		time.Sleep(20 * time.Millisecond)
	}
	backups := NewBackupService(paused, ledgerSvc, "1.0", nil)

	_, err := backups.Restore(ctx, []byte(`{"students":[{"id":"b","name":"Bình","attendanceHistory":[]}],"payments":[]}`), true)
	require.NoError(t, err)
	wg.Wait()

	assert.True(t, errors.Is(toggleErr, appErrors.ErrNotFound), "mutation runs against the restored list")
	rows := storedStudents(t, store)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `"b"`, string(rows[0]["id"]))
}
