// Package sessions provides a SQLite-backed dashboard.SessionStore so logins
// survive process restarts.
package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// SQLiteStore persists sessions in a single table.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (or reuses) the session database at path. ":memory:" keeps
// everything in a single in-process connection.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "organizeit-sessions.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sessions: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sessions: open sqlite: %w", err)
	}
	// sqlite serializes writers; one connection also keeps :memory: coherent
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_json BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sessions: create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

var _ dashboard.SessionStore = (*SQLiteStore)(nil)

// Save inserts or replaces the session.
func (s *SQLiteStore) Save(ctx context.Context, session dashboard.Session) error {
	if session.Token == "" {
		return fmt.Errorf("%w: session token is required", dashboard.ErrValidation)
	}
	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("sessions: encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (token, user_json, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET user_json = excluded.user_json,
			created_at = excluded.created_at, expires_at = excluded.expires_at`,
		session.Token, user, session.CreatedAt.UnixMilli(), session.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("sessions: save: %w", err)
	}
	return nil
}

// Get loads the session for token or returns dashboard.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, token string) (dashboard.Session, error) {
	var (
		user             []byte
		created, expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_json, created_at, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&user, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return dashboard.Session{}, dashboard.ErrNotFound
	}
	if err != nil {
		return dashboard.Session{}, fmt.Errorf("sessions: get: %w", err)
	}
	session := dashboard.Session{
		Token:     token,
		CreatedAt: time.UnixMilli(created).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}
	if err := json.Unmarshal(user, &session.User); err != nil {
		return dashboard.Session{}, fmt.Errorf("sessions: decode user: %w", err)
	}
	return session, nil
}

// Delete removes the session. Unknown tokens are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("sessions: delete: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions expired at now and reports how many.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sessions: purge: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
