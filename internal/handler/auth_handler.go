package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/service"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthStatus, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*service.AuthStatus, error)
}

// AuthHandler exposes the passcode gate.
type AuthHandler struct {
	service authService
}

// NewAuthHandler builds a new AuthHandler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login godoc
// @Summary Open the passcode gate
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Passcode"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Logout godoc
// @Summary Close the passcode gate
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Report whether the gate is open
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}
