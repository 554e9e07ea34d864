// Package store defines the persistence interface for users, chat sessions
// and message history.
package store

import (
	"context"
	"time"
)

// Store is the interface the chat service persists through.
type Store interface {
	Close() error

	// Users
	CreateUser(ctx context.Context, email, passwordHash string) error
	GetUser(ctx context.Context, email string) (User, bool, error)

	// Sessions
	CreateSession(ctx context.Context, sessionID, userEmail string) error
	HasSession(ctx context.Context, sessionID string) (bool, error)

	// History
	AppendMessage(ctx context.Context, sessionID, role, text string) error
	SessionHistory(ctx context.Context, sessionID string) ([]Message, error)
	UserHistory(ctx context.Context, userEmail string) ([]SessionHistory, error)
}

// User is a registered account.
type User struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Message is one side of a chat exchange. Role is "user" or "bot".
type Message struct {
	Role      string
	Text      string
	CreatedAt time.Time
}

// SessionHistory is a session's full transcript, newest session first when
// returned from UserHistory.
type SessionHistory struct {
	SessionID string
	Messages  []Message
}
