// Package relationship implements the friend-request state machine. Every
// transition touches two accounts and goes through the identity store's
// ExecutePair so pending edges and friend edges move as one atomic step.
package relationship

import (
	"context"

	"huddle/internal/audit"
	"huddle/internal/identity"
	"huddle/internal/platform/metrics"
	"huddle/internal/relay"
	pkgerrors "huddle/pkg/errors"
)

// Informational statuses for no-op successes on Request.
const (
	InfoAlreadyFriends = "already friends"
	InfoAlreadyPending = "friend request already pending"
)

// EventNotifier is the relay side the engine needs.
type EventNotifier interface {
	Notify(username string, event relay.Event)
}

// SnapshotRequester triggers an async durable snapshot after a mutation.
type SnapshotRequester interface {
	Request()
}

// Relationships is the read view of one account's friend graph.
type Relationships struct {
	Friends  []string `json:"friends"`
	Incoming []string `json:"incoming"`
	Outgoing []string `json:"outgoing"`
}

type Service struct {
	identity identity.Store
	notifier EventNotifier
	snapshot SnapshotRequester
	audit    audit.Emitter
	metrics  *metrics.Metrics
}

func NewService(store identity.Store, notifier EventNotifier, snapshot SnapshotRequester,
	emitter audit.Emitter, m *metrics.Metrics) *Service {
	return &Service{
		identity: store,
		notifier: notifier,
		snapshot: snapshot,
		audit:    emitter,
		metrics:  m,
	}
}

// Request records a pending friend request from -> to. Requesting an
// existing friend or re-requesting a pending pair is a no-op success with an
// informational status; the pending state itself is the durable record, so
// the counterparty is only notified when live.
func (s *Service) Request(ctx context.Context, from, to string) (string, error) {
	if from == to {
		return "", pkgerrors.ErrSelfReference
	}

	var info string
	_, _, err := s.identity.ExecutePair(ctx, from, to,
		func(a, b *identity.Account) error {
			switch {
			case a.Friends.Has(to):
				info = InfoAlreadyFriends
			case a.Outgoing.Has(to) || a.Incoming.Has(to):
				info = InfoAlreadyPending
			}
			return nil
		},
		func(a, b *identity.Account) {
			if info != "" {
				return
			}
			a.Outgoing.Add(to)
			b.Incoming.Add(from)
		})
	if err != nil {
		return "", err
	}
	if info != "" {
		return info, nil
	}

	s.metrics.FriendRequests.Inc()
	s.audit.Emit(from, to, audit.ActionFriendRequested, "")
	s.snapshot.Request()
	s.notifier.Notify(to, relay.Event{
		Kind:    relay.KindFriendRequest,
		Payload: relay.FriendRequestEvent{From: from},
	})
	return "", nil
}

// Accept resolves a pending request: from is the acceptor, to the original
// requester. Pending edges in both directions are cleared and symmetric
// friend edges added in the same atomic step.
func (s *Service) Accept(ctx context.Context, from, to string) error {
	_, _, err := s.identity.ExecutePair(ctx, from, to,
		func(a, b *identity.Account) error {
			if !a.Incoming.Has(to) {
				return pkgerrors.ErrNoSuchRequest
			}
			return nil
		},
		func(a, b *identity.Account) {
			clearPending(a, b)
			a.Friends.Add(to)
			b.Friends.Add(from)
		})
	if err != nil {
		return err
	}

	s.metrics.FriendshipsMade.Inc()
	s.audit.Emit(from, to, audit.ActionFriendAccepted, "")
	s.snapshot.Request()
	s.notifier.Notify(from, relay.Event{
		Kind:    relay.KindFriendUpdate,
		Payload: relay.FriendUpdateEvent{User: to},
	})
	s.notifier.Notify(to, relay.Event{
		Kind:    relay.KindFriendUpdate,
		Payload: relay.FriendUpdateEvent{User: from},
	})
	s.notifier.Notify(to, relay.Event{
		Kind:    relay.KindFriendAccepted,
		Payload: relay.FriendAcceptedEvent{From: from},
	})
	return nil
}

// DirectAdd establishes mutual friendship without the request handshake,
// clearing any stale pending edges. Idempotent when already friends.
// Returns both users' friend lists after the transition.
func (s *Service) DirectAdd(ctx context.Context, from, to string) ([]string, []string, error) {
	if from == to {
		return nil, nil, pkgerrors.ErrSelfReference
	}

	alreadyFriends := false
	accA, accB, err := s.identity.ExecutePair(ctx, from, to,
		func(a, b *identity.Account) error {
			alreadyFriends = a.Friends.Has(to)
			return nil
		},
		func(a, b *identity.Account) {
			if alreadyFriends {
				return
			}
			clearPending(a, b)
			a.Friends.Add(to)
			b.Friends.Add(from)
		})
	if err != nil {
		return nil, nil, err
	}
	if alreadyFriends {
		return accA.Friends.Sorted(), accB.Friends.Sorted(), nil
	}

	s.metrics.FriendshipsMade.Inc()
	s.audit.Emit(from, to, audit.ActionFriendAdded, "")
	s.snapshot.Request()
	s.notifier.Notify(from, relay.Event{
		Kind:    relay.KindFriendUpdate,
		Payload: relay.FriendUpdateEvent{User: to},
	})
	s.notifier.Notify(to, relay.Event{
		Kind:    relay.KindFriendUpdate,
		Payload: relay.FriendUpdateEvent{User: from},
	})
	return accA.Friends.Sorted(), accB.Friends.Sorted(), nil
}

// List returns the friend graph view for one account.
func (s *Service) List(ctx context.Context, username string) (Relationships, error) {
	acc, err := s.identity.Find(ctx, username)
	if err != nil {
		return Relationships{}, err
	}
	return Relationships{
		Friends:  acc.Friends.Sorted(),
		Incoming: acc.Incoming.Sorted(),
		Outgoing: acc.Outgoing.Sorted(),
	}, nil
}

// clearPending removes every pending edge between the two accounts. Must run
// inside an ExecutePair mutate.
func clearPending(a, b *identity.Account) {
	a.Incoming.Remove(b.Username)
	a.Outgoing.Remove(b.Username)
	b.Incoming.Remove(a.Username)
	b.Outgoing.Remove(a.Username)
}
