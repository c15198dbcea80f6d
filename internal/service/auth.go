// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donatrack/donatrack/internal/auth"
	"github.com/donatrack/donatrack/internal/metrics"
	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/repository"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// UserStore is the persistence needed by AuthService.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// TokenRevoker tracks logged-out session tokens.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LoginInput is the payload of a login request.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token    string
	Identity *model.Identity
}

// AuthService handles login, token verification and logout.
type AuthService struct {
	users   UserStore
	revoked TokenRevoker
	tokens  *auth.TokenManager
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, revoked TokenRevoker, tokens *auth.TokenManager, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		revoked: revoked,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger.With("component", "auth"),
	}
}

// Login checks the credentials and issues a session token.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Username = normalizeText(input.Username)
	if err := validateStruct(&input); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginAttempt(metrics.LoginInvalidCredentials)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
	}
	if !ok {
		s.metrics.IncLoginAttempt(metrics.LoginInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, input.Password)
	}

	token, identity, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLoginAttempt(metrics.LoginSuccess)
	s.logger.Info("user logged in", "user_id", user.ID)

	return &LoginResult{Token: token, Identity: identity}, nil
}

// upgradeHash replaces a legacy hash with Argon2id. Failures only cost a retry on next login.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to rehash password", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.logger.Error("failed to store upgraded password hash", "user_id", user.ID, "error", err)
		return
	}
	s.logger.Info("upgraded legacy password hash", "user_id", user.ID)
}

// Verify validates a bearer token and returns its identity.
// Malformed, expired and revoked tokens all yield ErrInvalidToken.
func (s *AuthService) Verify(ctx context.Context, token string) (*model.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.revoked.IsTokenRevoked(ctx, identity.TokenID)
	if err != nil {
		// Fail open on Redis errors, matching the login limiter.
		s.logger.Warn("revocation check failed", "error", err)
		return identity, nil
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}

	return identity, nil
}

// Logout revokes the session token behind identity until it expires.
func (s *AuthService) Logout(ctx context.Context, identity *model.Identity) error {
	if err := s.revoked.RevokeToken(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("user logged out", "user_id", identity.UserID)
	return nil
}
