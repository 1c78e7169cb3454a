package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/service"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

type syncService interface {
	Config(ctx context.Context) (models.GithubConfig, bool, error)
	SaveConfig(ctx context.Context, req service.GithubConfigRequest) (models.GithubConfig, error)
	Push(ctx context.Context) (*service.PushResult, error)
	Pull(ctx context.Context, confirmed bool) (*service.RestoreResult, error)
	Diagnose(ctx context.Context, override *service.GithubConfigRequest) (*models.RemoteDiagnosis, error)
	Status() models.SyncStatus
}

// SyncHandler exposes the remote single-file store.
type SyncHandler struct {
	service syncService
}

// NewSyncHandler constructs a sync handler.
func NewSyncHandler(svc syncService) *SyncHandler {
	return &SyncHandler{service: svc}
}

// GetConfig godoc
// @Summary Read the sync target (token masked)
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/config [get]
func (h *SyncHandler) GetConfig(c *gin.Context) {
	cfg, found, err := h.service.Config(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, map[string]interface{}{"configured": found})
}

// SaveConfig godoc
// @Summary Save the sync target
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body service.GithubConfigRequest true "Target"
// @Success 200 {object} response.Envelope
// @Router /sync/config [put]
func (h *SyncHandler) SaveConfig(c *gin.Context) {
	var req service.GithubConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := h.service.SaveConfig(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// Push godoc
// @Summary Upload the backup envelope
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sync/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	result, err := h.service.Push(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Pull godoc
// @Summary Download and restore the backup envelope
// @Tags Sync
// @Produce json
// @Param confirm query bool true "Must be true"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /sync/pull [post]
func (h *SyncHandler) Pull(c *gin.Context) {
	result, err := h.service.Pull(c.Request.Context(), confirmed(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Diagnose godoc
// @Summary Check repository access and file presence
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body service.GithubConfigRequest false "Target to test instead of the stored one"
// @Success 200 {object} response.Envelope
// @Router /sync/diagnose [post]
func (h *SyncHandler) Diagnose(c *gin.Context) {
	var override *service.GithubConfigRequest
	if c.Request.ContentLength != 0 {
		var req service.GithubConfigRequest
		if !bindJSON(c, &req) {
			return
		}
		override = &req
	}
	diag, err := h.service.Diagnose(c.Request.Context(), override)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diag)
}

// Status godoc
// @Summary Last sync outcome
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status())
}
