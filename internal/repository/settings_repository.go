package repository

import (
	"context"

	"github.com/noah-isme/smart-tuition/internal/models"
)

// SettingsRepository persists bank config, profiles, the sync target and the
// passcode flag.
type SettingsRepository struct {
	docs *DocumentRepository
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(docs *DocumentRepository) *SettingsRepository {
	return &SettingsRepository{docs: docs}
}

// BankConfig returns the active config, falling back to the defaults.
func (r *SettingsRepository) BankConfig(ctx context.Context) (models.BankConfig, error) {
	cfg := models.DefaultBankConfig()
	found, err := r.docs.readJSON(ctx, KeyBankConfig, &cfg)
	if err != nil {
		return models.BankConfig{}, err
	}
	if !found {
		return models.DefaultBankConfig(), nil
	}
	return cfg, nil
}

// SaveBankConfig overwrites the active config.
func (r *SettingsRepository) SaveBankConfig(ctx context.Context, cfg models.BankConfig) error {
	return r.docs.writeJSON(ctx, KeyBankConfig, cfg)
}

// Profiles returns the saved profiles.
func (r *SettingsRepository) Profiles(ctx context.Context) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if _, err := r.docs.readJSON(ctx, KeyProfiles, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	return profiles, nil
}

// SaveProfiles replaces the profile list.
func (r *SettingsRepository) SaveProfiles(ctx context.Context, profiles []models.UserProfile) error {
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	return r.docs.writeJSON(ctx, KeyProfiles, profiles)
}

// GithubConfig returns the sync target and whether one was saved.
func (r *SettingsRepository) GithubConfig(ctx context.Context) (models.GithubConfig, bool, error) {
	var cfg models.GithubConfig
	found, err := r.docs.readJSON(ctx, KeyGithubConfig, &cfg)
	if err != nil {
		return models.GithubConfig{}, false, err
	}
	return cfg, found, nil
}

// SaveGithubConfig overwrites the sync target.
func (r *SettingsRepository) SaveGithubConfig(ctx context.Context, cfg models.GithubConfig) error {
	return r.docs.writeJSON(ctx, KeyGithubConfig, cfg)
}

// AuthFlag reports whether the passcode gate is open.
func (r *SettingsRepository) AuthFlag(ctx context.Context) (bool, error) {
	raw, ok, err := r.docs.ReadRaw(ctx, KeyAuthFlag)
	if err != nil {
		return false, err
	}
	return ok && raw == AuthFlagValue, nil
}

// SetAuthFlag opens the gate.
func (r *SettingsRepository) SetAuthFlag(ctx context.Context) error {
	return r.docs.WriteRaw(ctx, KeyAuthFlag, AuthFlagValue)
}

// ClearAuthFlag closes the gate.
func (r *SettingsRepository) ClearAuthFlag(ctx context.Context) error {
	return r.docs.Delete(ctx, KeyAuthFlag)
}
