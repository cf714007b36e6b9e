// Package repository persists play sessions: a rolling window plus
// bookkeeping, keyed by an opaque session ID.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okian/underdog/internal/domain/window"
)

// Session is a stored rolling window.
type Session struct {
	ID        string
	State     window.State
	Rounds    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store provides read/write access to sessions.
type Store interface {
	// Create stores a new session for state and returns it with its ID set.
	Create(ctx context.Context, state window.State) (Session, error)

	// Get returns the session with the given ID.
	// Returns ErrNotFound if the session is unknown.
	Get(ctx context.Context, id string) (Session, error)

	// Save replaces a stored session, stamping UpdatedAt, and returns the
	// session as stored. Returns ErrNotFound if it is unknown.
	Save(ctx context.Context, s Session) (Session, error)

	// Delete removes a session. Returns ErrNotFound if it is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int

	// Close releases resources held by the store.
	Close() error
}

func newSession(state window.State, now time.Time) Session {
	return Session{
		ID:        uuid.NewString(),
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
