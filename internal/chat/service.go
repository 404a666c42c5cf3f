// Package chat is the one send path shared by the HTTP and websocket
// surfaces: append to the log, then best-effort relay to the recipient's
// live session.
package chat

import (
	"context"

	"huddle/internal/audit"
	"huddle/internal/message"
	"huddle/internal/platform/metrics"
	"huddle/internal/relay"
)

type EventNotifier interface {
	Notify(username string, event relay.Event)
}

type SnapshotRequester interface {
	Request()
}

type Service struct {
	log      *message.Log
	notifier EventNotifier
	snapshot SnapshotRequester
	audit    audit.Emitter
	metrics  *metrics.Metrics
}

func NewService(log *message.Log, notifier EventNotifier, snapshot SnapshotRequester,
	emitter audit.Emitter, m *metrics.Metrics) *Service {
	return &Service{
		log:      log,
		notifier: notifier,
		snapshot: snapshot,
		audit:    emitter,
		metrics:  m,
	}
}

// Send appends a message and notifies the recipient if live. The append is
// the durable part; relay delivery is at-most-once.
func (s *Service) Send(ctx context.Context, from, to, text string) (message.Message, error) {
	msg, err := s.log.Append(ctx, from, to, text)
	if err != nil {
		return message.Message{}, err
	}

	s.metrics.MessagesAppended.Inc()
	s.audit.Emit(from, to, audit.ActionMessageSent, "")
	s.snapshot.Request()
	s.notifier.Notify(to, relay.Event{
		Kind: relay.KindChatMessage,
		Payload: relay.ChatMessageEvent{
			From: msg.Sender,
			Text: msg.Text,
			Time: msg.CreatedAt,
		},
	})
	return msg, nil
}
