// Package presence maps usernames to their live session handle. Entries are
// ephemeral and never persisted; the registry holds no account data.
package presence

import (
	"context"
	"sync"

	"huddle/internal/identity"
	"huddle/internal/relay"
)

// Ensurer is the slice of the identity store presence needs: a session
// announcing an unseen username must become a first-class account.
type Ensurer interface {
	Ensure(ctx context.Context, username string) (identity.Account, error)
}

// Registry tracks at most one session handle per username. Last registration
// wins; a handle is removed only by the session that installed it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]relay.Handle
	identity Ensurer
}

func NewRegistry(identity Ensurer) *Registry {
	return &Registry{
		sessions: make(map[string]relay.Handle),
		identity: identity,
	}
}

// Register installs handle for username, evicting any prior handle. The
// username is ensured in the identity store so later friend requests to it
// succeed.
func (r *Registry) Register(ctx context.Context, username string, handle relay.Handle) error {
	if _, err := r.identity.Ensure(ctx, username); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[username] = handle
	return nil
}

// Lookup returns the live handle for username, if any.
func (r *Registry) Lookup(username string) (relay.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.sessions[username]
	return handle, ok
}

// UnregisterIfCurrent removes the mapping only while it still points at
// handle. A delayed disconnect from a replaced session must not evict the
// session that replaced it.
func (r *Registry) UnregisterIfCurrent(username string, handle relay.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[username]
	if !ok || current.ID() != handle.ID() {
		return false
	}
	delete(r.sessions, username)
	return true
}

// Count reports the number of live sessions, for metrics.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
