package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/underdog/internal/domain/window"
	"github.com/okian/underdog/pkg/metrics"
)

// MemoryStore keeps sessions in a map guarded by a RWMutex. window.State is
// immutable, so sessions are stored and returned by value.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, state window.State) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("create", sinceMs(start)) }()

	sess := newSession(state, s.now())
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	return sess, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("get", sinceMs(start)) }()

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordStoreError("get")
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sess Session) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("save", sinceMs(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		metrics.RecordStoreError("save")
		return Session{}, ErrNotFound
	}
	sess.UpdatedAt = s.now()
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("delete", sinceMs(start)) }()

	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		metrics.RecordStoreError("delete")
		return ErrNotFound
	}
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
