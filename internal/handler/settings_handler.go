package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/service"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

type profileService interface {
	BankConfig(ctx context.Context) (models.BankConfig, error)
	SaveBankConfig(ctx context.Context, cfg models.BankConfig) (models.BankConfig, error)
	Profiles(ctx context.Context) ([]models.UserProfile, error)
	Create(ctx context.Context, req service.ProfileRequest) (*models.UserProfile, error)
	Update(ctx context.Context, id string, req service.ProfileRequest) (*models.UserProfile, error)
	Switch(ctx context.Context, id string) (models.BankConfig, error)
	Delete(ctx context.Context, id string, confirmed bool) (models.BankConfig, error)
}

// SettingsHandler exposes the bank config and saved profiles.
type SettingsHandler struct {
	service profileService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(svc profileService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// GetBank godoc
// @Summary Active bank config
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/bank [get]
func (h *SettingsHandler) GetBank(c *gin.Context) {
	cfg, err := h.service.BankConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// SaveBank godoc
// @Summary Replace the active bank config
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.BankConfig true "Bank config"
// @Success 200 {object} response.Envelope
// @Router /settings/bank [put]
func (h *SettingsHandler) SaveBank(c *gin.Context) {
	var cfg models.BankConfig
	if !bindJSON(c, &cfg) {
		return
	}
	saved, err := h.service.SaveBankConfig(c.Request.Context(), cfg)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved)
}

// Banks godoc
// @Summary Known VietQR banks
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/banks [get]
func (h *SettingsHandler) Banks(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.KnownBanks)
}

// Profiles godoc
// @Summary Saved profiles
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/profiles [get]
func (h *SettingsHandler) Profiles(c *gin.Context) {
	list, err := h.service.Profiles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list)
}

// CreateProfile godoc
// @Summary Save a new profile and make it active
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.ProfileRequest true "Profile"
// @Success 201 {object} response.Envelope
// @Router /settings/profiles [post]
func (h *SettingsHandler) CreateProfile(c *gin.Context) {
	var req service.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// UpdateProfile godoc
// @Summary Rename a profile or change its config
// @Tags Settings
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body service.ProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Router /settings/profiles/{id} [put]
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// SwitchProfile godoc
// @Summary Apply a profile's config
// @Tags Settings
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /settings/profiles/{id}/switch [post]
func (h *SettingsHandler) SwitchProfile(c *gin.Context) {
	cfg, err := h.service.Switch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// DeleteProfile godoc
// @Summary Delete a profile
// @Tags Settings
// @Produce json
// @Param id path string true "Profile ID"
// @Param confirm query bool true "Must be true"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /settings/profiles/{id} [delete]
func (h *SettingsHandler) DeleteProfile(c *gin.Context) {
	cfg, err := h.service.Delete(c.Request.Context(), c.Param("id"), confirmed(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}
