package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/repository"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/github"
	"github.com/noah-isme/smart-tuition/pkg/jobs"
	"github.com/noah-isme/smart-tuition/pkg/kvstore"
)

type fakeRemote struct {
	file     *github.File
	getErr   error
	putErr   error
	repo     *github.Repository
	repoErr  error
	puts     int
	lastSHA  string
	lastBody []byte
}

func (f *fakeRemote) GetFile(ctx context.Context, t github.Target) (*github.File, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.file == nil {
		return nil, appErrors.Clone(appErrors.ErrRemoteNotFound, "")
	}
	return f.file, nil
}

func (f *fakeRemote) PutFile(ctx context.Context, t github.Target, content []byte, message, sha string) error {
	f.puts++
	f.lastSHA = sha
	f.lastBody = content
	return f.putErr
}

func (f *fakeRemote) GetRepository(ctx context.Context, t github.Target) (*github.Repository, error) {
	return f.repo, f.repoErr
}

type fakeSyncMetrics struct {
	results map[string]int
}

func (f *fakeSyncMetrics) RecordSync(op string, err error) {
	if f.results == nil {
		f.results = map[string]int{}
	}
	key := op + ":ok"
	if err != nil {
		key = op + ":fail"
	}
	f.results[key]++
}

type syncFixture struct {
	svc      *SyncService
	remote   *fakeRemote
	store    *kvstore.MemoryStore
	settings *repository.SettingsRepository
	reload   *reloadCounter
	metrics  *fakeSyncMetrics
}

func newSyncFixture(t *testing.T, cfg *models.GithubConfig) *syncFixture {
	t.Helper()
	store := kvstore.NewMemoryStore()
	docs := repository.NewDocumentRepository(store)
	settings := repository.NewSettingsRepository(docs)
	if cfg != nil {
		require.NoError(t, settings.SaveGithubConfig(context.Background(), *cfg))
	}
	reload := &reloadCounter{}
	backups := NewBackupService(docs, reload, "1.0", nil)
	remote := &fakeRemote{}
	metrics := &fakeSyncMetrics{}
	svc := NewSyncService(remote, settings, backups, metrics, "", nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 15, 8, 0, 0, 0, time.UTC) }
	return &syncFixture{svc: svc, remote: remote, store: store, settings: settings, reload: reload, metrics: metrics}
}

func completeConfig() *models.GithubConfig {
	return &models.GithubConfig{Token: "ghp_token", Owner: "co", Repo: "ledger", AutoSync: true}
}

func TestPushCreatesFileWithoutSHA(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())

	result, err := fx.svc.Push(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, "data/tuition_backup.json", result.Path)
	assert.Equal(t, "", fx.remote.lastSHA)
	assert.Contains(t, string(fx.remote.lastBody), `"students":[]`)
	assert.True(t, fx.svc.Status().Success)
	assert.Equal(t, 1, fx.metrics.results["push:ok"])
}

func TestPushIncludesExistingSHA(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	fx.remote.file = &github.File{SHA: "abc123"}

	result, err := fx.svc.Push(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "abc123", fx.remote.lastSHA)
}

func TestPushToleratesMetadataFailure(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	fx.remote.getErr = appErrors.Clone(appErrors.ErrRemoteUnavailable, "")

	_, err := fx.svc.Push(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fx.remote.puts)
}

func TestPushSurfacesTypedFailure(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	fx.remote.putErr = appErrors.Clone(appErrors.ErrRemoteConflict, "")

	_, err := fx.svc.Push(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrRemoteConflict))
	status := fx.svc.Status()
	assert.False(t, status.Success)
	assert.Equal(t, "REMOTE_CONFLICT", status.ErrorCode)
	assert.Equal(t, 1, fx.metrics.results["push:fail"])
}

func TestPushRequiresCompleteConfig(t *testing.T) {
	fx := newSyncFixture(t, &models.GithubConfig{Owner: "co"})
	_, err := fx.svc.Push(context.Background())
	require.True(t, errors.Is(err, appErrors.ErrRemoteConfig))
	assert.Contains(t, err.Error(), "token")
	assert.Contains(t, err.Error(), "repository")
	assert.Equal(t, 0, fx.remote.puts)
}

func TestPullRestoresValidEnvelope(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	fx.remote.file = &github.File{SHA: "s", Content: []byte(`{"version":"1.0","students":[{"id":"r1","name":"Lê Chi"}],"payments":[]}`)}

	result, err := fx.svc.Pull(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Students)
	assert.Contains(t, fx.store.Snapshot()[repository.KeyStudents], "Lê Chi")
	assert.Equal(t, 1, fx.reload.calls)
	assert.True(t, fx.svc.Status().ReloadNeed)
}

func TestPullRejectsInvalidFormatWithoutWriting(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	fx.remote.file = &github.File{SHA: "s", Content: []byte(`{"students":"not-an-array"}`)}
	writes := fx.store.Writes()

	_, err := fx.svc.Pull(context.Background(), true)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidBackup))
	assert.Equal(t, writes, fx.store.Writes())
	assert.Equal(t, 0, fx.reload.calls)
}

func TestPullNotFoundIsDistinctFromAuth(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	_, err := fx.svc.Pull(context.Background(), true)
	assert.True(t, errors.Is(err, appErrors.ErrRemoteNotFound))

	fx.remote.getErr = appErrors.Clone(appErrors.ErrRemoteAuth, "")
	_, err = fx.svc.Pull(context.Background(), true)
	assert.True(t, errors.Is(err, appErrors.ErrRemoteAuth))
	assert.False(t, errors.Is(err, appErrors.ErrRemoteNotFound))
}

func TestPullNeedsConfirmation(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	fx.remote.file = &github.File{Content: []byte(`{"students":[]}`)}
	writes := fx.store.Writes()

	_, err := fx.svc.Pull(context.Background(), false)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Equal(t, writes, fx.store.Writes())
}

func TestAutoSyncSkipsWhenDisabledOrIncomplete(t *testing.T) {
	off := completeConfig()
	off.AutoSync = false
	fx := newSyncFixture(t, off)
	attempted, err := fx.svc.AutoSync(context.Background())
	assert.False(t, attempted)
	assert.NoError(t, err)

	fx = newSyncFixture(t, &models.GithubConfig{Owner: "co", Repo: "r", AutoSync: true})
	attempted, _ = fx.svc.AutoSync(context.Background())
	assert.False(t, attempted)

	fx = newSyncFixture(t, nil)
	attempted, _ = fx.svc.AutoSync(context.Background())
	assert.False(t, attempted)
}

func TestAutoSyncFailureFallsBackToLocal(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	require.NoError(t, fx.store.Set(context.Background(), repository.KeyStudents, `[{"id":"local"}]`))
	fx.remote.getErr = appErrors.Clone(appErrors.ErrRemoteUnavailable, "")

	err := fx.svc.HandleJob(context.Background(), jobs.Job{Type: JobAutoSync})
	assert.True(t, errors.Is(err, appErrors.ErrRemoteUnavailable))
	status := fx.svc.Status()
	assert.Equal(t, models.SyncAuto, status.Operation)
	assert.Equal(t, "auto-sync failed, using local data", status.Message)
	assert.Equal(t, `[{"id":"local"}]`, fx.store.Snapshot()[repository.KeyStudents])
}

func TestSaveConfigKeepsTokenAndRedacts(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())

	saved, err := fx.svc.SaveConfig(context.Background(), GithubConfigRequest{Owner: "co", Repo: "other", Path: "/backups/x.json/"})
	require.NoError(t, err)
	assert.NotEqual(t, "ghp_token", saved.Token)
	assert.Equal(t, "backups/x.json", saved.Path)

	stored, _, err := fx.settings.GithubConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_token", stored.Token)
	assert.Equal(t, "other", stored.Repo)

	_, err = newSyncFixture(t, nil).svc.SaveConfig(context.Background(), GithubConfigRequest{Owner: "co", Repo: "r"})
	assert.True(t, errors.Is(err, appErrors.ErrRemoteConfig))
}

func TestDiagnose(t *testing.T) {
	fx := newSyncFixture(t, completeConfig())
	repo := &github.Repository{FullName: "co/ledger", Private: true}
	repo.Permissions.Push = true
	fx.remote.repo = repo

	diag, err := fx.svc.Diagnose(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, diag.RepositoryFound)
	assert.True(t, diag.CanWrite)
	assert.False(t, diag.FileExists)
	assert.Contains(t, diag.Message, "first push")

	fx.remote.file = &github.File{SHA: "x", Size: 2048}
	diag, err = fx.svc.Diagnose(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, diag.FileExists)
	assert.Equal(t, int64(2048), diag.FileSize)

	fx.remote.repoErr = appErrors.Clone(appErrors.ErrRemoteAuth, "")
	_, err = fx.svc.Diagnose(context.Background(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrRemoteAuth))

	fx.remote.repoErr = appErrors.Clone(appErrors.ErrRemoteNotFound, "")
	diag, err = fx.svc.Diagnose(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, diag.RepositoryFound)
}
