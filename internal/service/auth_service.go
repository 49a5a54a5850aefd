// Package service wires the gateway client, the session manager and the
// local store into the user-facing flows: authentication, the dashboard,
// expense submission and incremental sync.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkowal/splitmate/internal/api"
	"github.com/mkowal/splitmate/internal/models"
	"github.com/mkowal/splitmate/internal/session"
)

// AuthGateway is the subset of the API client the auth flow needs.
// Declared here so tests can substitute a fake.
type AuthGateway interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthService implements the login screen's behavior: register, login
// with token persistence, and logout.
type AuthService struct {
	gateway  AuthGateway
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAuthService creates an auth service over the gateway and session
// manager.
func NewAuthService(gateway AuthGateway, sessions *session.Manager) *AuthService {
	return &AuthService{
		gateway:  gateway,
		sessions: sessions,
		logger:   slog.Default().With("component", "auth"),
	}
}

// Register creates an account. It never logs the user in: the caller is
// expected to prompt for a login afterwards.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", api.ErrValidation)
	}

	user, err := s.gateway.Register(ctx, username, password)
	if err != nil {
		s.logger.Warn("registration failed", "username", username, "error", err)
		return nil, err
	}
	s.logger.Info("account created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login exchanges credentials for a token and persists it. The session
// turns authenticated only after the token is durably stored.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", api.ErrValidation)
	}

	token, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", "username", username, "error", err)
		return err
	}
	if err := s.sessions.SetToken(ctx, token); err != nil {
		return err
	}
	s.logger.Info("logged in", "username", username)
	return nil
}

// Logout clears the persisted token. There is no remote logout call; the
// session ends when the token is gone locally.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}
