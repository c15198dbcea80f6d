package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/donatrack/donatrack/internal/auth"
	"github.com/donatrack/donatrack/internal/handler/dto"
	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/service"
)

// Authenticator is the session API used by AuthHandler.
type Authenticator interface {
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, identity *model.Identity) error
}

// AuthHandler handles login, logout and identity endpoints.
type AuthHandler struct {
	service Authenticator
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger,
	}
}

// Login exchanges credentials for a session token.
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token: result.Token,
		User:  dto.ToUserResponse(result.Identity),
	})
}

// Logout revokes the presented token.
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	if err := h.service.Logout(r.Context(), identity); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated identity.
// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToUserResponse(identity))
}
