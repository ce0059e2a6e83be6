// Package session provides in-process conversation session management.
//
// Sessions hold conversation state for the lifetime of the process only;
// there is no persistence. A session is created on first use, grows as
// exchanges complete, and is discarded when the process exits or the
// caller abandons it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/demystifier/demystifier/internal/chat"
)

// ErrSessionNotFound indicates the requested session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Session pairs a stable identifier with one conversation.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Chat      *chat.Session
}

// Factory creates the conversation backing a new session.
type Factory func() (*chat.Session, error)

// Store is an in-memory, uuid-keyed session registry.
// Store is safe for concurrent use; the per-session serialization of
// submissions is the chat.Session's own concern.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	factory  Factory
}

// NewStore creates a session store. factory is invoked once per created
// session.
func NewStore(factory Factory) (*Store, error) {
	if factory == nil {
		return nil, errors.New("session factory is required")
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		factory:  factory,
	}, nil
}

// Create registers a new session with a fresh conversation.
func (s *Store) Create() (*Session, error) {
	conv, err := s.factory()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Chat:      conv,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, nil
}

// Get returns the session with the given ID, or ErrSessionNotFound.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetOrCreate returns the identified session, or a fresh one when id is
// nil. The second return reports whether a session was created.
func (s *Store) GetOrCreate(id *uuid.UUID) (*Session, bool, error) {
	if id == nil {
		sess, err := s.Create()
		return sess, true, err
	}
	sess, err := s.Get(*id)
	if err != nil {
		return nil, false, err
	}
	return sess, false, nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
