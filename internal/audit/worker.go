package audit

import (
	"context"
	"log/slog"
	"time"
)

// Worker decouples emitters from sink latency: Emit never blocks the domain
// call, the worker drains the inbox in the background. When the inbox is
// full the event is dropped; the audit trail is best-effort like the relay.
type Worker struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
	now    func() time.Time
}

func NewWorker(sink Sink, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Worker{
		sink:   sink,
		inbox:  make(chan Event, buffer),
		logger: logger,
		now:    time.Now,
	}
}

// Emit queues an event without blocking the caller.
func (w *Worker) Emit(actor, subject, action, detail string) {
	event := Event{
		Time:    w.now(),
		Actor:   actor,
		Subject: subject,
		Action:  action,
		Detail:  detail,
	}
	select {
	case w.inbox <- event:
	default:
		w.logger.Warn("audit inbox full, dropping event", "action", action)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(event)
		default:
			return
		}
	}
}

func (w *Worker) append(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.Error("audit append failed", "action", event.Action, "error", err)
	}
}
