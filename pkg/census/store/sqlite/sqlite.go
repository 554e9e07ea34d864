// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/censusqa/pkg/census/internalerr"
	"github.com/cognicore/censusqa/pkg/census/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for better concurrency between the chat handler and history reads
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
	email TEXT PRIMARY KEY,
	password TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_email TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY(user_email) REFERENCES users(email) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS histories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_histories_session ON histories(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_email);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

const timeLayout = time.RFC3339

// CreateUser inserts a new account. A second insert for the same email
// fails with ErrDuplicate.
func (s *sqliteStore) CreateUser(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, time.Now().UTC().Format(timeLayout))
	if err != nil {
		var exists bool
		if qerr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists); qerr == nil && exists {
			return fmt.Errorf("user %s: %w", email, internalerr.ErrDuplicate)
		}
		return err
	}
	return nil
}

// GetUser retrieves an account by email
func (s *sqliteStore) GetUser(ctx context.Context, email string) (store.User, bool, error) {
	var u store.User
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT email, password, created_at FROM users WHERE email = ?`, email).
		Scan(&u.Email, &u.PasswordHash, &created)
	if err == sql.ErrNoRows {
		return store.User{}, false, nil
	}
	if err != nil {
		return store.User{}, false, err
	}
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	return u, true, nil
}

// CreateSession registers a session, optionally owned by a user. An empty
// userEmail records an anonymous session.
func (s *sqliteStore) CreateSession(ctx context.Context, sessionID, userEmail string) error {
	var owner any
	if userEmail != "" {
		owner = userEmail
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id, user_email, created_at) VALUES (?, ?, ?)`,
		sessionID, owner, time.Now().UTC().Format(timeLayout))
	return err
}

// HasSession reports whether a session exists
func (s *sqliteStore) HasSession(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE session_id = ?)`, sessionID).Scan(&exists)
	return exists, err
}

// AppendMessage records one side of an exchange
func (s *sqliteStore) AppendMessage(ctx context.Context, sessionID, role, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO histories (session_id, role, message, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, role, text, time.Now().UTC().Format(timeLayout))
	return err
}

// SessionHistory returns a session's messages in insertion order
func (s *sqliteStore) SessionHistory(ctx context.Context, sessionID string) ([]store.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, message, created_at FROM histories WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []store.Message
	for rows.Next() {
		var m store.Message
		var created string
		if err := rows.Scan(&m.Role, &m.Text, &created); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(timeLayout, created)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// UserHistory returns every session owned by a user with its transcript,
// newest session first.
func (s *sqliteStore) UserHistory(ctx context.Context, userEmail string) ([]store.SessionHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM sessions WHERE user_email = ? ORDER BY created_at DESC, session_id DESC`,
		userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	histories := make([]store.SessionHistory, 0, len(ids))
	for _, id := range ids {
		msgs, err := s.SessionHistory(ctx, id)
		if err != nil {
			return nil, err
		}
		histories = append(histories, store.SessionHistory{SessionID: id, Messages: msgs})
	}
	return histories, nil
}
