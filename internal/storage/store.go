// Package storage provides abstractions for the client's local state.
package storage

import (
	"context"
	"errors"

	"github.com/mkowal/splitmate/internal/models"
)

// ErrNoToken is returned when no session token is persisted.
var ErrNoToken = errors.New("no session token stored")

// Store defines the interface for local persistence. It covers the single
// session token, the offline cache of server records, and the incremental
// sync cursor. The abstraction keeps the session and sync layers
// independent of the SQLite implementation.
type Store interface {
	// Token returns the persisted session token.
	// Returns ErrNoToken when none is stored.
	Token(ctx context.Context) (string, error)

	// SetToken persists the session token, replacing any previous one.
	SetToken(ctx context.Context, token string) error

	// ClearToken removes the persisted token. Clearing an absent token
	// is not an error.
	ClearToken(ctx context.Context) error

	// UpsertGroups inserts or replaces cached groups.
	UpsertGroups(ctx context.Context, groups []models.Group) error

	// UpsertExpenses inserts or replaces cached expenses.
	UpsertExpenses(ctx context.Context, expenses []models.Expense) error

	// CachedGroups returns all cached groups.
	CachedGroups(ctx context.Context) ([]models.Group, error)

	// CachedExpenses returns all cached expenses, newest date first.
	CachedExpenses(ctx context.Context) ([]models.Expense, error)

	// SyncCursor returns the timestamp of the last completed sync, as
	// the server formats it. Empty string means never synced.
	SyncCursor(ctx context.Context) (string, error)

	// SetSyncCursor records the sync cursor.
	SetSyncCursor(ctx context.Context, cursor string) error

	// Close releases any resources held by the store.
	Close() error
}
