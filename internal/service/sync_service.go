package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/github"
	"github.com/noah-isme/smart-tuition/pkg/jobs"
)

// JobAutoSync is the queue job type that runs the startup pull.
const JobAutoSync = "auto_sync"

type remoteFileStore interface {
	GetFile(ctx context.Context, t github.Target) (*github.File, error)
	PutFile(ctx context.Context, t github.Target, content []byte, message, sha string) error
	GetRepository(ctx context.Context, t github.Target) (*github.Repository, error)
}

type githubSettings interface {
	GithubConfig(ctx context.Context) (models.GithubConfig, bool, error)
	SaveGithubConfig(ctx context.Context, cfg models.GithubConfig) error
}

type envelopeGateway interface {
	Serialize(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, data []byte, confirmed bool) (*RestoreResult, error)
}

type syncRecorder interface {
	RecordSync(operation string, err error)
}

// GithubConfigRequest saves the sync target. An empty token keeps the one
// already stored.
type GithubConfigRequest struct {
	Token    string `json:"token"`
	Owner    string `json:"owner" validate:"required"`
	Repo     string `json:"repo" validate:"required"`
	Path     string `json:"path"`
	AutoSync bool   `json:"autoSync"`
}

// PushResult describes a successful push.
type PushResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
	Bytes   int    `json:"bytes"`
}

// SyncService moves the backup envelope to and from the remote single-file
// store.
type SyncService struct {
	remote      remoteFileStore
	settings    githubSettings
	backups     envelopeGateway
	metrics     syncRecorder
	defaultPath string
	logger      *zap.Logger
	now         func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	status  models.SyncStatus
}

// NewSyncService constructs the sync service.
func NewSyncService(remote remoteFileStore, settings githubSettings, backups envelopeGateway, metrics syncRecorder, defaultPath string, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultPath == "" {
		defaultPath = "data/tuition_backup.json"
	}
	return &SyncService{
		remote:      remote,
		settings:    settings,
		backups:     backups,
		metrics:     metrics,
		defaultPath: defaultPath,
		logger:      logger,
		now:         time.Now,
	}
}

// Config returns the stored target with the token masked.
func (s *SyncService) Config(ctx context.Context) (models.GithubConfig, bool, error) {
	cfg, found, err := s.settings.GithubConfig(ctx)
	if err != nil {
		return models.GithubConfig{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync config")
	}
	if found && cfg.Path == "" {
		cfg.Path = s.defaultPath
	}
	return cfg.Redacted(), found, nil
}

// SaveConfig stores the target after checking token, owner and repo.
func (s *SyncService) SaveConfig(ctx context.Context, req GithubConfigRequest) (models.GithubConfig, error) {
	existing, _, err := s.settings.GithubConfig(ctx)
	if err != nil {
		return models.GithubConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync config")
	}
	cfg := models.GithubConfig{
		Token:    strings.TrimSpace(req.Token),
		Owner:    strings.TrimSpace(req.Owner),
		Repo:     strings.TrimSpace(req.Repo),
		Path:     strings.Trim(strings.TrimSpace(req.Path), "/"),
		AutoSync: req.AutoSync,
	}
	if cfg.Token == "" {
		cfg.Token = existing.Token
	}
	if cfg.Path == "" {
		cfg.Path = s.defaultPath
	}
	if !cfg.Complete() {
		return models.GithubConfig{}, appErrors.Clone(appErrors.ErrRemoteConfig, missingFields(cfg))
	}
	if err := s.settings.SaveGithubConfig(ctx, cfg); err != nil {
		return models.GithubConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save sync config")
	}
	s.logger.Info("sync config saved", zap.String("owner", cfg.Owner), zap.String("repo", cfg.Repo), zap.String("path", cfg.Path), zap.Bool("auto_sync", cfg.AutoSync))
	return cfg.Redacted(), nil
}

// Push uploads the current envelope, creating the file when it is missing.
func (s *SyncService) Push(ctx context.Context) (*PushResult, error) {
	var result *PushResult
	err := s.run(ctx, models.SyncPush, func(ctx context.Context, target github.Target) error {
		payload, err := s.backups.Serialize(ctx)
		if err != nil {
			return err
		}

		sha := ""
		existing, err := s.remote.GetFile(ctx, target)
		switch {
		case err == nil:
			sha = existing.SHA
		case github.IsNotFound(err):
		default:
			s.logger.Warn("remote metadata unavailable, pushing without sha", zap.String("repo", target.Repo), zap.Error(err))
		}

		message := fmt.Sprintf("Backup tuition data %s", s.now().Format(time.RFC3339))
		if err := s.remote.PutFile(ctx, target, payload, message, sha); err != nil {
			return err
		}
		result = &PushResult{Path: target.Path, Created: sha == "", Bytes: len(payload)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Pull downloads the envelope, validates it and restores it. Without
// confirmation the remote file is checked but nothing is written.
func (s *SyncService) Pull(ctx context.Context, confirmed bool) (*RestoreResult, error) {
	return s.pull(ctx, models.SyncPull, confirmed)
}

func (s *SyncService) pull(ctx context.Context, op models.SyncDirection, confirmed bool) (*RestoreResult, error) {
	var result *RestoreResult
	err := s.run(ctx, op, func(ctx context.Context, target github.Target) error {
		file, err := s.remote.GetFile(ctx, target)
		if err != nil {
			if github.IsNotFound(err) {
				return appErrors.CloneWrap(appErrors.ErrRemoteNotFound, err,
					fmt.Sprintf("no backup at %s/%s/%s; push once before pulling", target.Owner, target.Repo, target.Path))
			}
			return err
		}
		if _, err := ValidateEnvelope(file.Content); err != nil {
			return appErrors.CloneWrap(appErrors.ErrInvalidBackup, err, "remote file is corrupt or not a tuition backup")
		}
		if !confirmed {
			return appErrors.Clone(appErrors.ErrConfirmationRequired, "pulling overwrites local data; repeat with confirm=true")
		}
		result, err = s.backups.Restore(ctx, file.Content, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AutoSync pulls silently when the stored target is complete and opted in.
// It reports whether a pull was attempted; failures only update the status.
func (s *SyncService) AutoSync(ctx context.Context) (bool, error) {
	cfg, found, err := s.settings.GithubConfig(ctx)
	if err != nil || !found || !cfg.AutoSync || !cfg.Complete() {
		return false, nil
	}
	if _, err := s.pull(ctx, models.SyncAuto, true); err != nil {
		s.setStatus(models.SyncStatus{
			Operation: models.SyncAuto,
			Success:   false,
			Message:   "auto-sync failed, using local data",
			ErrorCode: appErrors.FromError(err).Code,
			At:        s.now(),
		})
		return true, err
	}
	return true, nil
}

// HandleJob runs queued sync work.
func (s *SyncService) HandleJob(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case JobAutoSync:
		_, err := s.AutoSync(ctx)
		return err
	default:
		return fmt.Errorf("unknown sync job type %q", job.Type)
	}
}

// Status returns the last recorded outcome.
func (s *SyncService) Status() models.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.InProgress = s.running.Load()
	return st
}

// Diagnose checks what the remote accepts for the stored target, or for
// override when given. Auth failures are returned as errors; everything else
// is described in the diagnosis.
func (s *SyncService) Diagnose(ctx context.Context, override *GithubConfigRequest) (*models.RemoteDiagnosis, error) {
	cfg, _, err := s.settings.GithubConfig(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync config")
	}
	if override != nil {
		token := strings.TrimSpace(override.Token)
		if token == "" {
			token = cfg.Token
		}
		cfg = models.GithubConfig{Token: token, Owner: override.Owner, Repo: override.Repo, Path: override.Path}
	}
	if cfg.Path == "" {
		cfg.Path = s.defaultPath
	}
	if !cfg.Complete() {
		return nil, appErrors.Clone(appErrors.ErrRemoteConfig, missingFields(cfg))
	}
	target := toTarget(cfg)

	diag := &models.RemoteDiagnosis{}
	repo, err := s.remote.GetRepository(ctx, target)
	if err != nil {
		if errors.Is(err, appErrors.ErrRemoteNotFound) {
			diag.Message = fmt.Sprintf("repository %s/%s not found or not visible to this token", cfg.Owner, cfg.Repo)
			return diag, nil
		}
		return nil, err
	}
	diag.RepositoryFound = true
	diag.FullName = repo.FullName
	diag.Private = repo.Private
	diag.CanWrite = repo.Permissions.Push || repo.Permissions.Admin

	file, err := s.remote.GetFile(ctx, target)
	switch {
	case err == nil:
		diag.FileExists = true
		diag.FileSize = file.Size
		diag.FileSHA = file.SHA
	case github.IsNotFound(err):
		diag.Message = fmt.Sprintf("%s does not exist yet; the first push creates it", cfg.Path)
	default:
		return nil, err
	}
	if !diag.CanWrite {
		diag.Message = "token can read the repository but cannot push; grant write access"
	}
	return diag, nil
}

func (s *SyncService) run(ctx context.Context, op models.SyncDirection, fn func(context.Context, github.Target) error) error {
	if !s.running.CompareAndSwap(false, true) {
		return appErrors.Clone(appErrors.ErrConflict, "a sync is already running")
	}
	defer s.running.Store(false)

	cfg, found, err := s.settings.GithubConfig(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync config")
	}
	if !found || !cfg.Complete() {
		err := appErrors.Clone(appErrors.ErrRemoteConfig, missingFields(cfg))
		s.finish(op, err, false)
		return err
	}
	if cfg.Path == "" {
		cfg.Path = s.defaultPath
	}
	target := toTarget(cfg)

	s.logger.Info("sync started", zap.String("operation", string(op)), zap.String("owner", target.Owner), zap.String("repo", target.Repo), zap.String("path", target.Path))
	err = fn(ctx, target)
	s.finish(op, err, op != models.SyncPush)
	return err
}

func (s *SyncService) finish(op models.SyncDirection, err error, reload bool) {
	if errors.Is(err, appErrors.ErrConfirmationRequired) {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordSync(string(op), err)
	}
	st := models.SyncStatus{Operation: op, Success: err == nil, At: s.now()}
	if err != nil {
		appErr := appErrors.FromError(err)
		st.Message = appErr.Message
		st.ErrorCode = appErr.Code
		s.logger.Warn("sync failed", zap.String("operation", string(op)), zap.String("code", appErr.Code), zap.Error(err))
	} else {
		st.Message = fmt.Sprintf("%s completed", op)
		st.ReloadNeed = reload
		s.logger.Info("sync completed", zap.String("operation", string(op)))
	}
	s.setStatus(st)
}

func (s *SyncService) setStatus(st models.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func toTarget(cfg models.GithubConfig) github.Target {
	return github.Target{Token: cfg.Token, Owner: cfg.Owner, Repo: cfg.Repo, Path: cfg.Path}
}

func missingFields(cfg models.GithubConfig) string {
	var missing []string
	if strings.TrimSpace(cfg.Token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(cfg.Owner) == "" {
		missing = append(missing, "owner")
	}
	if strings.TrimSpace(cfg.Repo) == "" {
		missing = append(missing, "repository")
	}
	if len(missing) == 0 {
		return appErrors.ErrRemoteConfig.Message
	}
	return "sync config is missing: " + strings.Join(missing, ", ")
}
