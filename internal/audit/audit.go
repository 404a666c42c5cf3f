// Package audit records domain events for operational visibility. Sinks fan
// out: an in-memory ring for tests and debugging, kafka when configured.
package audit

import (
	"context"
	"time"
)

// Action names follow subject.verb so downstream consumers can route on
// prefix.
const (
	ActionUserRegistered  = "user.registered"
	ActionUserEnsured     = "user.ensured"
	ActionFriendRequested = "friend.requested"
	ActionFriendAccepted  = "friend.accepted"
	ActionFriendAdded     = "friend.added"
	ActionMessageSent     = "message.sent"
	ActionMessagesPruned  = "message.pruned"
)

// Event captures one domain action. Actor performed it, Subject received it.
type Event struct {
	Time    time.Time `json:"time"`
	Actor   string    `json:"actor"`
	Subject string    `json:"subject,omitempty"`
	Action  string    `json:"action"`
	Detail  string    `json:"detail,omitempty"`
}

// Sink persists or forwards audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
	Close() error
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(actor, subject, action, detail string)
}
