// Package message keeps the append-only chat log with its retention sweep.
// Only mutual friends may append; reading back is allowed even after the
// friendship gate would fail, so old conversations keep displaying.
package message

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"huddle/internal/identity"
	pkgerrors "huddle/pkg/errors"
)

// MaxTextLen is the bound applied to message text. Longer texts are
// truncated, not rejected.
const MaxTextLen = 2000

// DefaultRetention is how long a message survives before the TTL sweep
// removes it.
const DefaultRetention = 48 * time.Hour

// FriendReader is the slice of the identity store the log needs to enforce
// the mutual-friendship gate.
type FriendReader interface {
	Find(ctx context.Context, username string) (identity.Account, error)
}

// Log is the in-memory message store. Mutations and the TTL sweep share one
// mutex so a prune can never race an append or a read.
type Log struct {
	mu        sync.RWMutex
	messages  []*Message
	nextSeq   uint64
	retention time.Duration
	identity  FriendReader
	dirty     bool

	// readSeq[owner][contact] is the highest seq owner has fetched in that
	// conversation; messages to owner above it count as unread. Volatile,
	// like presence.
	readSeq map[string]map[string]uint64

	now func() time.Time
}

func NewLog(identity FriendReader, retention time.Duration) *Log {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Log{
		retention: retention,
		identity:  identity,
		readSeq:   make(map[string]map[string]uint64),
		now:       time.Now,
	}
}

// Append validates the friendship gate and stores a new message. Returns the
// stored message, with text already truncated to MaxTextLen runes.
func (l *Log) Append(ctx context.Context, sender, recipient, text string) (Message, error) {
	if text == "" {
		return Message{}, pkgerrors.ErrEmptyMessage
	}
	if _, err := l.identity.Find(ctx, recipient); err != nil {
		return Message{}, pkgerrors.ErrUnknownRecipient
	}
	senderAcc, err := l.identity.Find(ctx, sender)
	if err != nil {
		return Message{}, err
	}
	if !senderAcc.Friends.Has(recipient) {
		return Message{}, pkgerrors.ErrNotFriends
	}

	if runes := []rune(text); len(runes) > MaxTextLen {
		text = string(runes[:MaxTextLen])
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	msg := &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		CreatedAt: l.now(),
		seq:       l.nextSeq,
	}
	l.nextSeq++
	l.messages = append(l.messages, msg)
	l.dirty = true
	return *msg, nil
}

// Conversation returns every message between the two users, ascending by
// creation time with insertion order breaking ties. Fetching marks the
// conversation read for the requesting user.
func (l *Log) Conversation(_ context.Context, user, other string) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Message
	var maxSeq uint64
	for _, m := range l.messages {
		if !m.between(user, other) {
			continue
		}
		out = append(out, *m)
		if m.seq > maxSeq {
			maxSeq = m.seq
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].seq < out[j].seq
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if len(out) > 0 {
		l.markRead(user, other, maxSeq)
	}
	return out
}

// ContactsOf returns the union of user's friends and everyone they have
// exchanged at least one message with, excluding user itself.
func (l *Log) ContactsOf(ctx context.Context, user string) ([]string, error) {
	acc, err := l.identity.Find(ctx, user)
	if err != nil {
		return nil, err
	}
	contacts := acc.Friends.Clone()

	l.mu.RLock()
	for _, m := range l.messages {
		switch user {
		case m.Sender:
			contacts.Add(m.Recipient)
		case m.Recipient:
			contacts.Add(m.Sender)
		}
	}
	l.mu.RUnlock()

	contacts.Remove(user)
	return contacts.Sorted(), nil
}

// Summaries expands ContactsOf with per-conversation preview and unread
// counts for the contact-list endpoint.
func (l *Log) Summaries(ctx context.Context, user string) ([]ContactSummary, error) {
	contacts, err := l.ContactsOf(ctx, user)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ContactSummary, 0, len(contacts))
	for _, contact := range contacts {
		summary := ContactSummary{ID: contact, DisplayName: contact}
		watermark := l.readSeq[user][contact]
		var last *Message
		for _, m := range l.messages {
			if !m.between(user, contact) {
				continue
			}
			if last == nil || m.CreatedAt.After(last.CreatedAt) ||
				(m.CreatedAt.Equal(last.CreatedAt) && m.seq > last.seq) {
				last = m
			}
			if m.Recipient == user && m.seq > watermark {
				summary.UnreadCount++
			}
		}
		if last != nil {
			summary.LastMessagePreview = last.Text
			at := last.CreatedAt
			summary.LastMessageAt = &at
		}
		out = append(out, summary)
	}
	return out, nil
}

// PruneExpired drops every message older than the retention window. It is a
// pure filter: surviving messages keep their relative order.
func (l *Log) PruneExpired(now time.Time) int {
	cutoff := now.Add(-l.retention)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.messages[:0]
	for _, m := range l.messages {
		// Expired means age strictly exceeds the window.
		if !m.CreatedAt.Before(cutoff) {
			kept = append(kept, m)
		}
	}
	removed := len(l.messages) - len(kept)
	for i := len(kept); i < len(l.messages); i++ {
		l.messages[i] = nil
	}
	l.messages = kept
	if removed > 0 {
		l.dirty = true
	}
	return removed
}

// Export returns the messages in insertion order for snapshotting.
func (l *Log) Export(_ context.Context) ([]Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	for i, m := range l.messages {
		out[i] = *m
	}
	return out, nil
}

// Import replaces the log contents on startup restore. Sequence numbers are
// reassigned from list order, which is insertion order by construction.
func (l *Log) Import(_ context.Context, messages []Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = make([]*Message, len(messages))
	for i := range messages {
		m := messages[i]
		m.seq = uint64(i)
		l.messages[i] = &m
	}
	l.nextSeq = uint64(len(messages))
	l.dirty = false
	return nil
}

func (l *Log) Dirty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dirty
}

func (l *Log) MarkClean() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty = false
}

// markRead must be called with l.mu held.
func (l *Log) markRead(user, other string, seq uint64) {
	byContact, ok := l.readSeq[user]
	if !ok {
		byContact = make(map[string]uint64)
		l.readSeq[user] = byContact
	}
	if seq > byContact[other] {
		byContact[other] = seq
	}
}

func (m *Message) between(a, b string) bool {
	return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
}
