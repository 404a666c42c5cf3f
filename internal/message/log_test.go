package message

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/internal/credentials"
	"huddle/internal/identity"
	pkgerrors "huddle/pkg/errors"
)

func newTestLog(t *testing.T) (*Log, *identity.InMemoryStore) {
	t.Helper()
	store := identity.NewInMemoryStore(credentials.NewBcryptVerifier())
	log := NewLog(store, DefaultRetention)
	return log, store
}

func befriend(t *testing.T, store *identity.InMemoryStore, a, b string) {
	t.Helper()
	ctx := context.Background()
	_, err := store.Ensure(ctx, a)
	require.NoError(t, err)
	_, err = store.Ensure(ctx, b)
	require.NoError(t, err)
	_, _, err = store.ExecutePair(ctx, a, b, nil, func(accA, accB *identity.Account) {
		accA.Friends.Add(b)
		accB.Friends.Add(a)
	})
	require.NoError(t, err)
}

func TestAppendRequiresMutualFriendship(t *testing.T) {
	log, store := newTestLog(t)
	ctx := context.Background()
	_, err := store.Ensure(ctx, "alice")
	require.NoError(t, err)
	_, err = store.Ensure(ctx, "bob")
	require.NoError(t, err)

	_, err = log.Append(ctx, "alice", "bob", "hi")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFriends)

	befriend(t, store, "alice", "bob")
	msg, err := log.Append(ctx, "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "bob", msg.Recipient)
	assert.Equal(t, "hi", msg.Text)
	assert.NotEmpty(t, msg.ID)
}

func TestAppendValidation(t *testing.T) {
	log, store := newTestLog(t)
	ctx := context.Background()
	befriend(t, store, "alice", "bob")

	_, err := log.Append(ctx, "alice", "bob", "")
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyMessage)

	_, err = log.Append(ctx, "alice", "ghost", "hi")
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownRecipient)
}

func TestAppendTruncatesLongText(t *testing.T) {
	log, store := newTestLog(t)
	befriend(t, store, "alice", "bob")

	long := strings.Repeat("x", MaxTextLen+500)
	msg, err := log.Append(context.Background(), "alice", "bob", long)
	require.NoError(t, err)
	assert.Len(t, []rune(msg.Text), MaxTextLen)
}

func TestConversationOrderAndScope(t *testing.T) {
	log, store := newTestLog(t)
	ctx := context.Background()
	befriend(t, store, "alice", "bob")
	befriend(t, store, "alice", "carol")

	for _, text := range []string{"one", "two", "three"} {
		_, err := log.Append(ctx, "alice", "bob", text)
		require.NoError(t, err)
	}
	_, err := log.Append(ctx, "alice", "carol", "elsewhere")
	require.NoError(t, err)

	conv := log.Conversation(ctx, "alice", "bob")
	require.Len(t, conv, 3)
	assert.Equal(t, "one", conv[0].Text)
	assert.Equal(t, "two", conv[1].Text)
	assert.Equal(t, "three", conv[2].Text)
	for _, m := range conv {
		assert.NotEqual(t, "carol", m.Recipient)
	}
}

func TestConversationTiesBrokenByInsertionOrder(t *testing.T) {
	log, store := newTestLog(t)
	befriend(t, store, "alice", "bob")

	// Freeze the clock so every message shares one timestamp.
	now := time.Now()
	log.now = func() time.Time { return now }

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		_, err := log.Append(ctx, "alice", "bob", text)
		require.NoError(t, err)
	}

	conv := log.Conversation(ctx, "alice", "bob")
	require.Len(t, conv, 3)
	assert.Equal(t, []string{"a", "b", "c"},
		[]string{conv[0].Text, conv[1].Text, conv[2].Text})
}

func TestPruneExpired(t *testing.T) {
	log, store := newTestLog(t)
	befriend(t, store, "alice", "bob")
	ctx := context.Background()

	now := time.Now()
	log.now = func() time.Time { return now.Add(-72 * time.Hour) }
	_, err := log.Append(ctx, "alice", "bob", "stale")
	require.NoError(t, err)

	log.now = func() time.Time { return now }
	_, err = log.Append(ctx, "alice", "bob", "fresh")
	require.NoError(t, err)

	removed := log.PruneExpired(now)
	assert.Equal(t, 1, removed)

	conv := log.Conversation(ctx, "alice", "bob")
	require.Len(t, conv, 1)
	assert.Equal(t, "fresh", conv[0].Text)

	// A second sweep finds nothing left to remove.
	assert.Equal(t, 0, log.PruneExpired(now))
}

func TestPrunePreservesSurvivorOrder(t *testing.T) {
	log, store := newTestLog(t)
	befriend(t, store, "alice", "bob")
	ctx := context.Background()

	now := time.Now()
	for i, text := range []string{"old", "mid", "new"} {
		age := time.Duration(72-24*i) * time.Hour
		log.now = func() time.Time { return now.Add(-age) }
		_, err := log.Append(ctx, "alice", "bob", text)
		require.NoError(t, err)
	}

	removed := log.PruneExpired(now)
	assert.Equal(t, 1, removed)

	conv := log.Conversation(ctx, "alice", "bob")
	require.Len(t, conv, 2)
	assert.Equal(t, "mid", conv[0].Text)
	assert.Equal(t, "new", conv[1].Text)
}

func TestContactsOfCombinesFriendsAndCorrespondents(t *testing.T) {
	log, store := newTestLog(t)
	ctx := context.Background()
	befriend(t, store, "alice", "bob")
	befriend(t, store, "alice", "carol")

	// dave messaged alice while they were friends, then the friendship rows
	// were rebuilt without him; the conversation must still surface.
	befriend(t, store, "alice", "dave")
	_, err := log.Append(ctx, "dave", "alice", "hello")
	require.NoError(t, err)
	_, _, err = store.ExecutePair(ctx, "alice", "dave", nil, func(a, d *identity.Account) {
		a.Friends.Remove("dave")
		d.Friends.Remove("alice")
	})
	require.NoError(t, err)

	contacts, err := log.ContactsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol", "dave"}, contacts)

	_, err = log.ContactsOf(ctx, "ghost")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestSummariesUnreadAndPreview(t *testing.T) {
	log, store := newTestLog(t)
	ctx := context.Background()
	befriend(t, store, "alice", "bob")

	_, err := log.Append(ctx, "bob", "alice", "first")
	require.NoError(t, err)
	_, err = log.Append(ctx, "bob", "alice", "second")
	require.NoError(t, err)

	summaries, err := log.Summaries(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "bob", summaries[0].ID)
	assert.Equal(t, "second", summaries[0].LastMessagePreview)
	assert.Equal(t, 2, summaries[0].UnreadCount)

	// Fetching the conversation clears the unread counter.
	log.Conversation(ctx, "alice", "bob")
	summaries, err = log.Summaries(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].UnreadCount)
}

func TestExportImportRoundTrip(t *testing.T) {
	log, store := newTestLog(t)
	ctx := context.Background()
	befriend(t, store, "alice", "bob")
	_, err := log.Append(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	exported, err := log.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 1)

	fresh := NewLog(store, DefaultRetention)
	require.NoError(t, fresh.Import(ctx, exported))
	conv := fresh.Conversation(ctx, "alice", "bob")
	require.Len(t, conv, 1)
	assert.Equal(t, "hi", conv[0].Text)
	assert.False(t, fresh.Dirty())
}
