package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"huddle/internal/audit"
	"huddle/internal/identity"
	"huddle/internal/message"
	"huddle/internal/platform/metrics"
)

// IdentitySource is the snapshot-facing slice of the identity store.
type IdentitySource interface {
	Export(ctx context.Context) (map[string]identity.Account, error)
	Import(ctx context.Context, accounts map[string]identity.Account) error
	Dirty() bool
	MarkClean()
}

// MessageSource is the snapshot-facing slice of the message log.
type MessageSource interface {
	Export(ctx context.Context) ([]message.Message, error)
	Import(ctx context.Context, messages []message.Message) error
	PruneExpired(now time.Time) int
	Dirty() bool
	MarkClean()
}

// Gateway writes through every mutation to durable storage without gating
// the caller: Request coalesces triggers onto a single background writer.
// A periodic tick also prunes expired messages and snapshots if needed.
type Gateway struct {
	identity IdentitySource
	messages MessageSource
	blob     BlobStore
	interval time.Duration
	metrics  *metrics.Metrics
	audit    audit.Emitter
	logger   *slog.Logger

	trigger chan struct{}
	now     func() time.Time
}

func NewGateway(ids IdentitySource, msgs MessageSource, blob BlobStore,
	sweepInterval time.Duration, m *metrics.Metrics, emitter audit.Emitter,
	logger *slog.Logger) *Gateway {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	return &Gateway{
		identity: ids,
		messages: msgs,
		blob:     blob,
		interval: sweepInterval,
		metrics:  m,
		audit:    emitter,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Request schedules a snapshot. Never blocks; back-to-back mutations
// coalesce into one write.
func (g *Gateway) Request() {
	select {
	case g.trigger <- struct{}{}:
	default:
	}
}

// Restore loads the last durable state into the stores. A missing snapshot
// starts the process empty and is not an error.
func (g *Gateway) Restore(ctx context.Context) error {
	raw, err := g.blob.Load(ctx)
	if errors.Is(err, ErrNoState) {
		g.logger.Info("no prior snapshot, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	accounts, messages, err := decodeState(raw)
	if err != nil {
		return err
	}
	if err := g.identity.Import(ctx, accounts); err != nil {
		return err
	}
	if err := g.messages.Import(ctx, messages); err != nil {
		return err
	}
	g.logger.Info("restored snapshot",
		"accounts", len(accounts), "messages", len(messages))
	return nil
}

// Run is the background writer loop: snapshot on demand, prune and snapshot
// on the sweep tick, final snapshot on shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.write(context.Background())
			return ctx.Err()
		case <-g.trigger:
			g.write(ctx)
		case <-ticker.C:
			g.sweep(ctx)
		}
	}
}

func (g *Gateway) sweep(ctx context.Context) {
	removed := g.messages.PruneExpired(g.now())
	if removed > 0 {
		g.metrics.MessagesPruned.Add(float64(removed))
		g.audit.Emit("system", "", audit.ActionMessagesPruned,
			fmt.Sprintf("removed=%d", removed))
		g.logger.Info("pruned expired messages", "removed", removed)
	}
	if g.identity.Dirty() || g.messages.Dirty() {
		g.write(ctx)
	}
}

// write snapshots both stores. Failures are logged and counted, never
// propagated: in-memory state stays the source of truth.
func (g *Gateway) write(ctx context.Context) {
	start := g.now()

	accounts, err := g.identity.Export(ctx)
	if err != nil {
		g.fail("export identity store", err)
		return
	}
	messages, err := g.messages.Export(ctx)
	if err != nil {
		g.fail("export message log", err)
		return
	}
	blob, err := encodeState(accounts, messages)
	if err != nil {
		g.fail("encode snapshot", err)
		return
	}
	if err := g.blob.Save(ctx, blob); err != nil {
		g.fail("save snapshot", err)
		return
	}

	g.identity.MarkClean()
	g.messages.MarkClean()
	g.metrics.SnapshotDuration.Observe(g.now().Sub(start).Seconds())
}

func (g *Gateway) fail(stage string, err error) {
	g.metrics.SnapshotFailures.Inc()
	g.logger.Error("snapshot failed", "stage", stage, "error", err)
}

// OpenBlobStore builds the configured backend.
func OpenBlobStore(backend, target string) (BlobStore, error) {
	switch backend {
	case "", "file":
		return NewFileStore(target), nil
	case "sqlite":
		return NewSQLiteStore(target)
	case "postgres":
		return NewPostgresStore(target)
	case "redis":
		return NewRedisStore(target)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}
