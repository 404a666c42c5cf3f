package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration. Everything comes from the
// environment so main stays lean and deployments stay twelve-factor.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration

	// SnapshotBackend selects the durable blob backend: "file" (default),
	// "sqlite", "postgres" or "redis". SnapshotTarget is backend specific
	// (path, DSN or URL).
	SnapshotBackend string
	SnapshotTarget  string

	// Retention and sweep cadence for the message log.
	MessageRetention time.Duration
	SweepInterval    time.Duration

	// KafkaBrokers enables the kafka audit sink when non-empty.
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:             getenv("HUDDLE_ADDR", ":8080"),
		JWTSigningKey:    getenv("HUDDLE_JWT_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:         getenvDuration("HUDDLE_TOKEN_TTL", 24*time.Hour),
		SnapshotBackend:  getenv("HUDDLE_SNAPSHOT_BACKEND", "file"),
		SnapshotTarget:   getenv("HUDDLE_SNAPSHOT_TARGET", "huddle-state.json"),
		MessageRetention: getenvDuration("HUDDLE_MESSAGE_RETENTION", 48*time.Hour),
		SweepInterval:    getenvDuration("HUDDLE_SWEEP_INTERVAL", time.Hour),
		AuditTopic:       getenv("HUDDLE_AUDIT_TOPIC", "huddle.audit"),
	}
	if brokers := os.Getenv("HUDDLE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
