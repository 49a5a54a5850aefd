// Package session owns the single bearer token of the client process.
//
// The token lives in the local store between runs. At most one token is
// active at a time; absence means logged out. The authenticated state is
// a pure function of "is a token persisted", evaluated at startup, and
// is never re-validated against the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mkowal/splitmate/internal/storage"
)

// Manager holds the in-memory token and keeps it in step with the store.
type Manager struct {
	store  storage.Store
	logger *slog.Logger

	mu       sync.RWMutex
	token    string
	restored bool
}

// NewManager creates a session manager over the given store.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:  store,
		logger: slog.Default().With("component", "session"),
	}
}

// Restore loads the persisted token and reports whether the session is
// authenticated. Storage failures degrade to "not authenticated": they
// are logged, never surfaced.
func (m *Manager) Restore(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.restored = true
	token, err := m.store.Token(ctx)
	if errors.Is(err, storage.ErrNoToken) {
		m.token = ""
		return false
	}
	if err != nil {
		m.logger.Warn("token restore failed, treating as logged out", "error", err)
		m.token = ""
		return false
	}
	m.token = token
	return token != ""
}

// SetToken persists a freshly issued token and marks the session
// authenticated.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	if err := m.store.SetToken(ctx, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	m.mu.Lock()
	m.token = token
	m.restored = true
	m.mu.Unlock()
	m.logger.Debug("session token stored")
	return nil
}

// Clear forgets the token unconditionally. The in-memory session goes
// unauthenticated even when the store write fails.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.restored = true
	m.mu.Unlock()

	if err := m.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	m.logger.Debug("session token cleared")
	return nil
}

// Token implements api.TokenSource. It returns the current token, or ""
// when logged out, restoring lazily if Restore was never called.
func (m *Manager) Token(ctx context.Context) string {
	m.mu.RLock()
	restored, token := m.restored, m.token
	m.mu.RUnlock()

	if !restored {
		m.Restore(ctx)
		m.mu.RLock()
		token = m.token
		m.mu.RUnlock()
	}
	return token
}

// Authenticated reports whether a token is currently held. Only
// meaningful after Restore, SetToken or Clear.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}
