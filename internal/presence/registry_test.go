package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/internal/credentials"
	"huddle/internal/identity"
	"huddle/internal/relay"
)

type fakeHandle struct {
	id string
}

func (h *fakeHandle) ID() string                  { return h.id }
func (h *fakeHandle) Deliver(_ relay.Event) error { return nil }

func newTestRegistry() (*Registry, *identity.InMemoryStore) {
	store := identity.NewInMemoryStore(credentials.NewBcryptVerifier())
	return NewRegistry(store), store
}

func TestRegisterAndLookup(t *testing.T) {
	registry, _ := newTestRegistry()
	handle := &fakeHandle{id: "s1"}

	require.NoError(t, registry.Register(context.Background(), "alice", handle))

	got, ok := registry.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "s1", got.ID())

	_, ok = registry.Lookup("bob")
	assert.False(t, ok)
}

func TestRegisterEnsuresAccount(t *testing.T) {
	registry, store := newTestRegistry()

	require.NoError(t, registry.Register(context.Background(), "carol", &fakeHandle{id: "s1"}))

	acc, err := store.Find(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", acc.Username)
}

func TestLastRegistrationWins(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "alice", &fakeHandle{id: "s1"}))
	require.NoError(t, registry.Register(ctx, "alice", &fakeHandle{id: "s2"}))

	got, ok := registry.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "s2", got.ID())
	assert.Equal(t, 1, registry.Count())
}

func TestStaleDisconnectDoesNotEvictReplacement(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	s1 := &fakeHandle{id: "s1"}
	s2 := &fakeHandle{id: "s2"}
	require.NoError(t, registry.Register(ctx, "alice", s1))
	require.NoError(t, registry.Register(ctx, "alice", s2))

	// s1's delayed disconnect arrives after s2 took over.
	removed := registry.UnregisterIfCurrent("alice", s1)
	assert.False(t, removed)

	got, ok := registry.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "s2", got.ID())

	removed = registry.UnregisterIfCurrent("alice", s2)
	assert.True(t, removed)
	_, ok = registry.Lookup("alice")
	assert.False(t, ok)
}
