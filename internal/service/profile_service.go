package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

// DefaultProfileName labels the profile created on first use.
const DefaultProfileName = "Mặc định"

type settingsStore interface {
	BankConfig(ctx context.Context) (models.BankConfig, error)
	SaveBankConfig(ctx context.Context, cfg models.BankConfig) error
	Profiles(ctx context.Context) ([]models.UserProfile, error)
	SaveProfiles(ctx context.Context, profiles []models.UserProfile) error
}

// ProfileRequest creates or edits a profile. A nil config copies the active one.
type ProfileRequest struct {
	Name   string             `json:"name" validate:"required"`
	Config *models.BankConfig `json:"config"`
}

// ProfileService manages the active bank config and the saved profiles.
type ProfileService struct {
	settings  settingsStore
	validator *validator.Validate
	logger    *zap.Logger
	newID     func() string
}

// NewProfileService constructs the profile service.
func NewProfileService(settings settingsStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{settings: settings, validator: validate, logger: logger, newID: uuid.NewString}
}

// BankConfig returns the active config.
func (s *ProfileService) BankConfig(ctx context.Context) (models.BankConfig, error) {
	cfg, err := s.settings.BankConfig(ctx)
	if err != nil {
		return models.BankConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank config")
	}
	return cfg, nil
}

// SaveBankConfig replaces the active config.
func (s *ProfileService) SaveBankConfig(ctx context.Context, cfg models.BankConfig) (models.BankConfig, error) {
	cfg, err := s.normalizeConfig(cfg)
	if err != nil {
		return models.BankConfig{}, err
	}
	if err := s.settings.SaveBankConfig(ctx, cfg); err != nil {
		return models.BankConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save bank config")
	}
	s.logger.Info("bank config saved", zap.String("bank_id", cfg.BankID))
	return cfg, nil
}

// EnsureDefault creates the default profile from the active config when no
// profile exists yet.
func (s *ProfileService) EnsureDefault(ctx context.Context) ([]models.UserProfile, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) > 0 {
		return profiles, nil
	}
	active, err := s.BankConfig(ctx)
	if err != nil {
		return nil, err
	}
	profiles = []models.UserProfile{{ID: s.newID(), Name: DefaultProfileName, Config: active}}
	if err := s.save(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Profiles lists the saved profiles, creating the default on first use.
func (s *ProfileService) Profiles(ctx context.Context) ([]models.UserProfile, error) {
	return s.EnsureDefault(ctx)
}

// Create adds a profile and makes its config active.
func (s *ProfileService) Create(ctx context.Context, req ProfileRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil || strings.TrimSpace(req.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "profile name is required")
	}
	profiles, err := s.EnsureDefault(ctx)
	if err != nil {
		return nil, err
	}
	var cfg models.BankConfig
	if req.Config != nil {
		cfg = *req.Config
	} else if cfg, err = s.BankConfig(ctx); err != nil {
		return nil, err
	}
	if cfg, err = s.normalizeConfig(cfg); err != nil {
		return nil, err
	}
	profile := models.UserProfile{ID: s.newID(), Name: strings.TrimSpace(req.Name), Config: cfg}
	if err := s.save(ctx, append(profiles, profile)); err != nil {
		return nil, err
	}
	if _, err := s.SaveBankConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update renames a profile and/or replaces its config. The new config also
// becomes active.
func (s *ProfileService) Update(ctx context.Context, id string, req ProfileRequest) (*models.UserProfile, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := profileIndex(profiles, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		profiles[idx].Name = name
	}
	if req.Config != nil {
		cfg, err := s.normalizeConfig(*req.Config)
		if err != nil {
			return nil, err
		}
		profiles[idx].Config = cfg
		if _, err := s.SaveBankConfig(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, profiles); err != nil {
		return nil, err
	}
	out := profiles[idx]
	return &out, nil
}

// Switch makes the profile's config active.
func (s *ProfileService) Switch(ctx context.Context, id string) (models.BankConfig, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return models.BankConfig{}, err
	}
	idx := profileIndex(profiles, id)
	if idx < 0 {
		return models.BankConfig{}, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	return s.SaveBankConfig(ctx, profiles[idx].Config)
}

// Delete removes a profile after confirmation. The last profile cannot be
// removed; the first remaining profile becomes active.
func (s *ProfileService) Delete(ctx context.Context, id string, confirmed bool) (models.BankConfig, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return models.BankConfig{}, err
	}
	idx := profileIndex(profiles, id)
	if idx < 0 {
		return models.BankConfig{}, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	if len(profiles) <= 1 {
		return models.BankConfig{}, appErrors.Clone(appErrors.ErrValidation, "at least one profile must remain")
	}
	if !confirmed {
		return models.BankConfig{}, appErrors.Clone(appErrors.ErrConfirmationRequired, fmt.Sprintf("deleting profile %s; repeat with confirm=true", profiles[idx].Name))
	}
	remaining := append(profiles[:idx:idx], profiles[idx+1:]...)
	if err := s.save(ctx, remaining); err != nil {
		return models.BankConfig{}, err
	}
	return s.SaveBankConfig(ctx, remaining[0].Config)
}

// BankDisplayName resolves the label printed for a bank config.
func BankDisplayName(cfg models.BankConfig) string {
	if strings.TrimSpace(cfg.BankName) != "" {
		return cfg.BankName
	}
	if bank, ok := models.FindBank(cfg.BankID); ok {
		return bank.Name
	}
	return "NH " + cfg.BankID
}

func (s *ProfileService) normalizeConfig(cfg models.BankConfig) (models.BankConfig, error) {
	cfg.BankID = strings.TrimSpace(cfg.BankID)
	cfg.AccountNo = strings.TrimSpace(cfg.AccountNo)
	cfg.AccountName = strings.ToUpper(strings.TrimSpace(cfg.AccountName))
	if cfg.Template == "" {
		cfg.Template = models.QRCompact
	}
	if err := s.validator.Struct(cfg); err != nil {
		return models.BankConfig{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bank config")
	}
	return cfg, nil
}

func (s *ProfileService) load(ctx context.Context) ([]models.UserProfile, error) {
	profiles, err := s.settings.Profiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profiles")
	}
	return profiles, nil
}

func (s *ProfileService) save(ctx context.Context, profiles []models.UserProfile) error {
	if err := s.settings.SaveProfiles(ctx, profiles); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profiles")
	}
	return nil
}

func profileIndex(profiles []models.UserProfile, id string) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}
