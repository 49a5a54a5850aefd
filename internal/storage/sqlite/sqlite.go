// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mkowal/splitmate/internal/models"
	"github.com/mkowal/splitmate/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

const (
	keyToken      = "session_token"
	keySyncCursor = "last_sync"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path. It creates the
// parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the persisted session token.
func (s *Store) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM local_state WHERE key = ?", keyToken,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return "", storage.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// SetToken persists the session token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.setState(ctx, keyToken, token)
}

// ClearToken removes the persisted token.
func (s *Store) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM local_state WHERE key = ?", keyToken,
	); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// SyncCursor returns the last-sync timestamp, or "" when never synced.
func (s *Store) SyncCursor(ctx context.Context) (string, error) {
	var cursor string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM local_state WHERE key = ?", keySyncCursor,
	).Scan(&cursor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read sync cursor: %w", err)
	}
	return cursor, nil
}

// SetSyncCursor records the sync cursor.
func (s *Store) SetSyncCursor(ctx context.Context, cursor string) error {
	return s.setState(ctx, keySyncCursor, cursor)
}

func (s *Store) setState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// UpsertGroups inserts or replaces cached groups and their members.
func (s *Store) UpsertGroups(ctx context.Context, groups []models.Group) error {
	if len(groups) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, g := range groups {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, updated_at, is_deleted) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   updated_at = excluded.updated_at,
			   is_deleted = excluded.is_deleted`,
			g.ID, g.Name, g.UpdatedAt, boolToInt(g.IsDeleted),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert group: %w", err)
		}

		if _, err = tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ?", g.ID,
		); err != nil {
			return fmt.Errorf("failed to reset group members: %w", err)
		}
		for _, member := range g.Members {
			if _, err = tx.ExecContext(ctx,
				"INSERT INTO group_members (group_id, member_id) VALUES (?, ?)",
				g.ID, member,
			); err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertExpenses inserts or replaces cached expenses.
func (s *Store) UpsertExpenses(ctx context.Context, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range expenses {
		var payer sql.NullInt64
		if e.PersonPaying != nil {
			payer = sql.NullInt64{Int64: int64(*e.PersonPaying), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, name, description, amount, person_paying, date, updated_at, is_deleted)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   group_id = excluded.group_id,
			   name = excluded.name,
			   description = excluded.description,
			   amount = excluded.amount,
			   person_paying = excluded.person_paying,
			   date = excluded.date,
			   updated_at = excluded.updated_at,
			   is_deleted = excluded.is_deleted`,
			e.ID, e.Group, e.Name, e.Description, e.Amount, payer, e.Date, e.UpdatedAt, boolToInt(e.IsDeleted),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CachedGroups returns all cached groups with their members.
func (s *Store) CachedGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, updated_at, is_deleted FROM groups ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		var deleted int
		if err := rows.Scan(&g.ID, &g.Name, &g.UpdatedAt, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.IsDeleted = deleted != 0
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for i := range groups {
		memberRows, err := s.db.QueryContext(ctx,
			"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY member_id",
			groups[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query group members: %w", err)
		}
		for memberRows.Next() {
			var member int
			if err := memberRows.Scan(&member); err != nil {
				memberRows.Close()
				return nil, fmt.Errorf("failed to scan group member: %w", err)
			}
			groups[i].Members = append(groups[i].Members, member)
		}
		memberRows.Close()
		if err := memberRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate group members: %w", err)
		}
	}

	return groups, nil
}

// CachedExpenses returns all cached expenses, newest date first.
func (s *Store) CachedExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, name, description, amount, person_paying, date, updated_at, is_deleted
		 FROM expenses ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var payer sql.NullInt64
		var deleted int
		if err := rows.Scan(&e.ID, &e.Group, &e.Name, &e.Description, &e.Amount, &payer, &e.Date, &e.UpdatedAt, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if payer.Valid {
			p := int(payer.Int64)
			e.PersonPaying = &p
		}
		e.IsDeleted = deleted != 0
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
