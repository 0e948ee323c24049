// Package storage persists the session token in a SQLite database so the
// CLI stays signed in between runs, the way the browser kept it in local
// storage.
//
// The schema is managed with golang-migrate from embedded migrations and is
// applied on open.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/xpgraph/internal/session"

	_ "modernc.org/sqlite"
)

// Session is the stored sign-in record.
type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
}

// Storage is a SQLite-backed session.TokenStore
type Storage struct {
	db *sql.DB
}

var _ session.TokenStore = (*Storage)(nil)

// New opens (creating if needed) the database at dbPath and applies the
// schema. ":memory:" opens a private in-memory database.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, errors.New("database path must not be empty")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: SQLite serializes writers anyway and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close releases the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ActiveSession returns the stored session record.
func (s *Storage) ActiveSession(ctx context.Context) (Session, error) {
	var (
		sess    Session
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, created_at FROM sessions ORDER BY created_at DESC LIMIT 1`,
	).Scan(&sess.ID, &sess.Token, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, session.ErrNoToken
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}

	sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Session{}, fmt.Errorf("parse session created_at: %w", err)
	}
	return sess, nil
}

// LoadToken implements session.TokenStore
func (s *Storage) LoadToken(ctx context.Context) (string, error) {
	sess, err := s.ActiveSession(ctx)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// SaveToken replaces any stored session with a new one holding token.
func (s *Storage) SaveToken(ctx context.Context, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, token, created_at) VALUES (?, ?, ?)`,
		uuid.New().String(), token, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// DeleteToken implements session.TokenStore
func (s *Storage) DeleteToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
