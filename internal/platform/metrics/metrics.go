package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the coordinator.
type Metrics struct {
	UsersRegistered  prometheus.Counter
	FriendRequests   prometheus.Counter
	FriendshipsMade  prometheus.Counter
	MessagesAppended prometheus.Counter
	MessagesPruned   prometheus.Counter
	EventsDelivered  *prometheus.CounterVec
	EventsDropped    *prometheus.CounterVec
	SessionsActive   prometheus.Gauge
	SnapshotDuration prometheus.Histogram
	SnapshotFailures prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on an explicit registerer so tests can stay isolated.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_users_registered_total",
			Help: "Total number of accounts registered.",
		}),
		FriendRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_friend_requests_total",
			Help: "Total number of friend requests created.",
		}),
		FriendshipsMade: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_friendships_total",
			Help: "Total number of friendships established.",
		}),
		MessagesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_messages_appended_total",
			Help: "Total number of chat messages appended to the log.",
		}),
		MessagesPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_messages_pruned_total",
			Help: "Total number of chat messages removed by the TTL sweep.",
		}),
		EventsDelivered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_events_delivered_total",
			Help: "Relay events delivered to a live session, by kind.",
		}, []string{"kind"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_events_dropped_total",
			Help: "Relay events dropped because the recipient was offline, by kind.",
		}, []string{"kind"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_sessions_active",
			Help: "Number of currently registered live sessions.",
		}),
		SnapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "huddle_snapshot_duration_seconds",
			Help:    "Time spent writing a durable snapshot.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_snapshot_failures_total",
			Help: "Total number of failed durable snapshot writes.",
		}),
	}
}
