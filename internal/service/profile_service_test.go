package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-tuition/internal/models"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

type fakeSettings struct {
	bank     *models.BankConfig
	profiles []models.UserProfile
}

func (f *fakeSettings) BankConfig(ctx context.Context) (models.BankConfig, error) {
	if f.bank == nil {
		return models.DefaultBankConfig(), nil
	}
	return *f.bank, nil
}

func (f *fakeSettings) SaveBankConfig(ctx context.Context, cfg models.BankConfig) error {
	f.bank = &cfg
	return nil
}

func (f *fakeSettings) Profiles(ctx context.Context) ([]models.UserProfile, error) {
	return append([]models.UserProfile(nil), f.profiles...), nil
}

func (f *fakeSettings) SaveProfiles(ctx context.Context, profiles []models.UserProfile) error {
	f.profiles = append([]models.UserProfile(nil), profiles...)
	return nil
}

func newProfiles() (*ProfileService, *fakeSettings) {
	store := &fakeSettings{}
	svc := NewProfileService(store, nil, nil)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
	return svc, store
}

func TestProfilesCreatesDefault(t *testing.T) {
	svc, store := newProfiles()
	list, err := svc.Profiles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultProfileName, list[0].Name)
	assert.Equal(t, "970422", list[0].Config.BankID)
	assert.Len(t, store.profiles, 1)

	again, err := svc.Profiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestSaveBankConfigDefaultsTemplate(t *testing.T) {
	svc, store := newProfiles()
	cfg, err := svc.SaveBankConfig(context.Background(), models.BankConfig{BankID: "970436", AccountNo: " 0123 ", AccountName: "nguyen van a"})
	require.NoError(t, err)
	assert.Equal(t, models.QRCompact, cfg.Template)
	assert.Equal(t, "0123", store.bank.AccountNo)
	assert.Equal(t, "NGUYEN VAN A", store.bank.AccountName)

	_, err = svc.SaveBankConfig(context.Background(), models.BankConfig{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.SaveBankConfig(context.Background(), models.BankConfig{BankID: "1", Template: "poster"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCreateAndSwitchProfile(t *testing.T) {
	svc, store := newProfiles()
	ctx := context.Background()

	created, err := svc.Create(ctx, ProfileRequest{Name: "Lớp tối", Config: &models.BankConfig{BankID: "970418", AccountNo: "999"}})
	require.NoError(t, err)
	assert.Equal(t, "p2", created.ID)
	assert.Equal(t, "970418", store.bank.BankID)
	assert.Len(t, store.profiles, 2)

	cfg, err := svc.Switch(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "970422", cfg.BankID)
	assert.Equal(t, "970422", store.bank.BankID)

	_, err = svc.Switch(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCreateProfileCopiesActiveConfig(t *testing.T) {
	svc, _ := newProfiles()
	ctx := context.Background()
	_, err := svc.SaveBankConfig(ctx, models.BankConfig{BankID: "970407", AccountNo: "42"})
	require.NoError(t, err)

	created, err := svc.Create(ctx, ProfileRequest{Name: "Copy"})
	require.NoError(t, err)
	assert.Equal(t, "970407", created.Config.BankID)

	_, err = svc.Create(ctx, ProfileRequest{Name: "  "})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUpdateProfileAppliesConfig(t *testing.T) {
	svc, store := newProfiles()
	ctx := context.Background()
	_, err := svc.Profiles(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "p1", ProfileRequest{Name: "Chính", Config: &models.BankConfig{BankID: "970416", Template: models.QRPrint}})
	require.NoError(t, err)
	assert.Equal(t, "Chính", updated.Name)
	assert.Equal(t, "970416", store.bank.BankID)
	assert.Equal(t, "Chính", store.profiles[0].Name)
}

func TestDeleteProfile(t *testing.T) {
	svc, store := newProfiles()
	ctx := context.Background()
	_, err := svc.Create(ctx, ProfileRequest{Name: "Second", Config: &models.BankConfig{BankID: "970403"}})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "p2", false)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Len(t, store.profiles, 2)

	cfg, err := svc.Delete(ctx, "p2", true)
	require.NoError(t, err)
	assert.Equal(t, "970422", cfg.BankID)
	require.Len(t, store.profiles, 1)

	_, err = svc.Delete(ctx, "p1", true)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBankDisplayName(t *testing.T) {
	assert.Equal(t, "My Bank", BankDisplayName(models.BankConfig{BankID: "970436", BankName: "My Bank"}))
	assert.Equal(t, "Vietcombank", BankDisplayName(models.BankConfig{BankID: "970436"}))
	assert.Equal(t, "NH 123", BankDisplayName(models.BankConfig{BankID: "123"}))
}
