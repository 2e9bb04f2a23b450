// Package memory implements the per-session key-value backing store in
// process memory. Values do not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	lastSeen time.Time
	values   map[string]string
}

// Store is a process-local session key-value store. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	now      func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*session),
		now:      time.Now,
	}
}

// Touch creates the session or refreshes its last-seen time.
func (s *Store) Touch(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(sessionID)
	return nil
}

func (s *Store) touch(sessionID uuid.UUID) *session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{values: make(map[string]string)}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, sessionID uuid.UUID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	v, ok := sess.values[key]
	return v, ok, nil
}

// Set overwrites the value stored under key and refreshes the session.
func (s *Store) Set(_ context.Context, sessionID uuid.UUID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(sessionID).values[key] = value
	return nil
}

// PurgeIdle drops sessions last seen before the cutoff.
func (s *Store) PurgeIdle(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Sessions returns the IDs of every stored session in no particular order.
func (s *Store) Sessions() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
