package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

type authFlagStore interface {
	AuthFlag(ctx context.Context) (bool, error)
	SetAuthFlag(ctx context.Context) error
	ClearAuthFlag(ctx context.Context) error
}

// AuthConfig defines the passcode gate.
type AuthConfig struct {
	Enabled        bool
	SecretCodeHash string
}

// LoginRequest carries the passcode.
type LoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// AuthStatus reports whether the ledger routes are open.
type AuthStatus struct {
	Enabled       bool `json:"enabled"`
	Authenticated bool `json:"authenticated"`
}

// AuthService opens and closes the passcode gate. The gate only hides the
// ledger from casual use; it does not identify anyone.
type AuthService struct {
	flags     authFlagStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(flags authFlagStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{flags: flags, validator: validate, logger: logger, config: config}
}

// Login compares the passcode with the configured hash and opens the gate.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthStatus, error) {
	if !s.config.Enabled {
		return &AuthStatus{Enabled: false, Authenticated: true}, nil
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "passcode is required")
	}
	if strings.TrimSpace(s.config.SecretCodeHash) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "passcode is not configured on the server")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.SecretCodeHash), []byte(req.Code)); err != nil {
		s.logger.Info("passcode rejected")
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid passcode")
	}
	if err := s.flags.SetAuthFlag(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	return &AuthStatus{Enabled: true, Authenticated: true}, nil
}

// Logout closes the gate.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.flags.ClearAuthFlag(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// Status reports the gate state.
func (s *AuthService) Status(ctx context.Context) (*AuthStatus, error) {
	ok, err := s.IsAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthStatus{Enabled: s.config.Enabled, Authenticated: ok}, nil
}

// IsAuthenticated is true when the gate is disabled or the flag is set.
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	if !s.config.Enabled {
		return true, nil
	}
	ok, err := s.flags.AuthFlag(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
	return ok, nil
}
