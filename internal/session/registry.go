package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Registry owns the session store and the per-session locks. All mutation
// goes through WithSession so read-modify-write sequences on one session are
// serialised while different sessions proceed independently.
type Registry struct {
	store Store
	locks *KeyedLocker
	now   func() time.Time
}

// NewRegistry wraps store. A nil store uses an in-memory one.
func NewRegistry(store Store) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{
		store: store,
		locks: NewKeyedLocker(),
		now:   time.Now,
	}
}

// WithClock overrides the clock used for new sessions.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	if now != nil {
		r.now = now
	}
	return r
}

// WithSession loads (or creates) the session for id, runs fn under the
// session's lock and saves the result. created is true for a new session.
// If fn returns an error nothing is saved.
func (r *Registry) WithSession(ctx context.Context, id string, fn func(s *Session, created bool) error) error {
	release, err := r.locks.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("session: lock %s: %w", id, err)
	}
	defer release()

	s, err := r.store.Get(ctx, id)
	created := false
	switch {
	case errors.Is(err, ErrNotFound):
		s = New(id, r.now())
		created = true
	case err != nil:
		return err
	}

	if err := fn(s, created); err != nil {
		return err
	}
	return r.store.Save(ctx, s)
}

// Get returns a read-only copy of a session.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	return r.store.Get(ctx, id)
}

// List returns copies of every session.
func (r *Registry) List(ctx context.Context) ([]*Session, error) {
	return r.store.List(ctx)
}
