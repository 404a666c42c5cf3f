package relationship

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/internal/credentials"
	"huddle/internal/identity"
	"huddle/internal/platform/metrics"
	"huddle/internal/relay"
	pkgerrors "huddle/pkg/errors"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events map[string][]relay.Event
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(map[string][]relay.Event)}
}

func (n *recordingNotifier) Notify(username string, event relay.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[username] = append(n.events[username], event)
}

func (n *recordingNotifier) kinds(username string) []relay.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []relay.Kind
	for _, e := range n.events[username] {
		out = append(out, e.Kind)
	}
	return out
}

type countingSnapshot struct{ count int }

func (s *countingSnapshot) Request() { s.count++ }

type nopAudit struct{}

func (nopAudit) Emit(actor, subject, action, detail string) {}

func newTestService(t *testing.T) (*Service, *identity.InMemoryStore, *recordingNotifier, *countingSnapshot) {
	t.Helper()
	store := identity.NewInMemoryStore(credentials.NewBcryptVerifier())
	notifier := newRecordingNotifier()
	snap := &countingSnapshot{}
	svc := NewService(store, notifier, snap, nopAudit{}, metrics.NewWith(prometheus.NewRegistry()))
	return svc, store, notifier, snap
}

func register(t *testing.T, store *identity.InMemoryStore, usernames ...string) {
	t.Helper()
	for _, u := range usernames {
		_, err := store.Register(context.Background(), u, "pw")
		require.NoError(t, err)
	}
}

func TestRequestThenAccept(t *testing.T) {
	svc, store, notifier, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	info, err := svc.Request(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, info)

	rels, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, rels.Incoming)

	require.NoError(t, svc.Accept(ctx, "bob", "alice"))

	aliceRels, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	bobRels, err := svc.List(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, []string{"bob"}, aliceRels.Friends)
	assert.Equal(t, []string{"alice"}, bobRels.Friends)
	assert.Empty(t, aliceRels.Incoming)
	assert.Empty(t, aliceRels.Outgoing)
	assert.Empty(t, bobRels.Incoming)
	assert.Empty(t, bobRels.Outgoing)

	// The requester hears both the relationship change and the acceptance.
	assert.Contains(t, notifier.kinds("alice"), relay.KindFriendUpdate)
	assert.Contains(t, notifier.kinds("alice"), relay.KindFriendAccepted)
	assert.Contains(t, notifier.kinds("bob"), relay.KindFriendUpdate)
}

func TestRequestIsIdempotent(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	_, err := svc.Request(ctx, "alice", "bob")
	require.NoError(t, err)

	info, err := svc.Request(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, InfoAlreadyPending, info)

	// Reverse direction is also a no-op while a request is pending.
	info, err = svc.Request(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, InfoAlreadyPending, info)

	rels, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, rels.Incoming)
	assert.Empty(t, rels.Outgoing)
}

func TestRequestBetweenFriendsIsNoop(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	_, _, err := svc.DirectAdd(ctx, "alice", "bob")
	require.NoError(t, err)

	info, err := svc.Request(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, InfoAlreadyFriends, info)

	rels, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, rels.Incoming)
}

func TestRequestValidation(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice")

	_, err := svc.Request(ctx, "alice", "alice")
	assert.ErrorIs(t, err, pkgerrors.ErrSelfReference)

	_, err = svc.Request(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)

	_, err = svc.Request(ctx, "ghost", "alice")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestAcceptWithoutRequest(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	err := svc.Accept(ctx, "bob", "alice")
	assert.ErrorIs(t, err, pkgerrors.ErrNoSuchRequest)

	err = svc.Accept(ctx, "bob", "ghost")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestDirectAddIsIdempotent(t *testing.T) {
	svc, store, _, snap := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	first, _, err := svc.DirectAdd(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, first)
	snapshotsAfterFirst := snap.count

	second, friendsOfBob, err := svc.DirectAdd(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, second)
	assert.Equal(t, []string{"alice"}, friendsOfBob)
	assert.Equal(t, snapshotsAfterFirst, snap.count, "idempotent add must not trigger another snapshot")
}

func TestDirectAddClearsStalePendingEdges(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	_, err := svc.Request(ctx, "alice", "bob")
	require.NoError(t, err)

	_, _, err = svc.DirectAdd(ctx, "bob", "alice")
	require.NoError(t, err)

	for _, u := range []string{"alice", "bob"} {
		rels, err := svc.List(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, rels.Incoming, u)
		assert.Empty(t, rels.Outgoing, u)
		assert.Len(t, rels.Friends, 1, u)
	}
}

func TestRequestToSessionCreatedAccount(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice")

	// carol only ever appeared via a live session announcement.
	_, err := store.Ensure(ctx, "carol")
	require.NoError(t, err)

	_, err = svc.Request(ctx, "alice", "carol")
	require.NoError(t, err)

	rels, err := svc.List(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, rels.Incoming)
}

func TestListUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.List(context.Background(), "ghost")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestFriendRequestNotifiesLiveCounterparty(t *testing.T) {
	svc, store, notifier, _ := newTestService(t)
	ctx := context.Background()
	register(t, store, "alice", "bob")

	_, err := svc.Request(ctx, "alice", "bob")
	require.NoError(t, err)

	kinds := notifier.kinds("bob")
	require.Len(t, kinds, 1)
	assert.Equal(t, relay.KindFriendRequest, kinds[0])
	assert.Empty(t, notifier.kinds("alice"))
}
