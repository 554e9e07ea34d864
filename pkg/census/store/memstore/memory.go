// Package memstore is an in-memory implementation of store.Store for tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/censusqa/pkg/census/internalerr"
	"github.com/cognicore/censusqa/pkg/census/store"
)

type session struct {
	userEmail string
	createdAt time.Time
	seq       int
}

// Store is an in-memory store.Store.
type Store struct {
	mu       sync.RWMutex
	nextSeq  int
	users    map[string]store.User
	sessions map[string]session
	messages map[string][]store.Message
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[string]store.User),
		sessions: make(map[string]session),
		messages: make(map[string][]store.Message),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateUser registers an account, rejecting duplicate emails.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return fmt.Errorf("user %s: %w", email, internalerr.ErrDuplicate)
	}
	s.users[email] = store.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

// GetUser returns an account by email.
func (s *Store) GetUser(ctx context.Context, email string) (store.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	return u, ok, nil
}

// CreateSession registers a session. Re-creating an existing session is a
// no-op, matching the sqlite implementation.
func (s *Store) CreateSession(ctx context.Context, sessionID, userEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; ok {
		return nil
	}
	s.nextSeq++
	s.sessions[sessionID] = session{
		userEmail: userEmail,
		createdAt: time.Now().UTC(),
		seq:       s.nextSeq,
	}
	return nil
}

// HasSession reports whether a session exists.
func (s *Store) HasSession(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok, nil
}

// AppendMessage records one side of an exchange.
func (s *Store) AppendMessage(ctx context.Context, sessionID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[sessionID] = append(s.messages[sessionID], store.Message{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// SessionHistory returns a session's messages in insertion order.
func (s *Store) SessionHistory(ctx context.Context, sessionID string) ([]store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	out := make([]store.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// UserHistory returns a user's sessions, newest first.
func (s *Store) UserHistory(ctx context.Context, userEmail string) ([]store.SessionHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type owned struct {
		id  string
		seq int
	}
	var ids []owned
	for id, sess := range s.sessions {
		if sess.userEmail == userEmail {
			ids = append(ids, owned{id: id, seq: sess.seq})
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].seq > ids[j].seq })

	histories := make([]store.SessionHistory, 0, len(ids))
	for _, o := range ids {
		msgs := s.messages[o.id]
		out := make([]store.Message, len(msgs))
		copy(out, msgs)
		histories = append(histories, store.SessionHistory{SessionID: o.id, Messages: out})
	}
	return histories, nil
}
