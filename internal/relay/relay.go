package relay

import (
	"log/slog"

	"huddle/internal/platform/metrics"
)

// Handle is a live session able to receive events. Implemented by the
// websocket client; the registry only ever compares handles by ID.
type Handle interface {
	ID() string
	Deliver(event Event) error
}

// Presence is the lookup side of the presence registry.
type Presence interface {
	Lookup(username string) (Handle, bool)
}

// Notifier routes events to whichever session currently represents a
// username. Absent or failing sessions are a silent no-op.
type Notifier struct {
	presence Presence
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewNotifier(presence Presence, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{presence: presence, metrics: m, logger: logger}
}

// Notify delivers the event to username's live session if one exists.
// Delivery is at-most-once; there is no retry and no offline queue.
func (n *Notifier) Notify(username string, event Event) {
	handle, ok := n.presence.Lookup(username)
	if !ok {
		n.metrics.EventsDropped.WithLabelValues(string(event.Kind)).Inc()
		return
	}
	if err := handle.Deliver(event); err != nil {
		n.metrics.EventsDropped.WithLabelValues(string(event.Kind)).Inc()
		n.logger.Debug("event delivery failed",
			"user", username, "kind", event.Kind, "error", err)
		return
	}
	n.metrics.EventsDelivered.WithLabelValues(string(event.Kind)).Inc()
}
