package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"huddle/internal/audit"
	"huddle/internal/chat"
	"huddle/internal/credentials"
	"huddle/internal/identity"
	jwttoken "huddle/internal/jwt_token"
	"huddle/internal/message"
	"huddle/internal/platform/config"
	"huddle/internal/platform/httpserver"
	"huddle/internal/platform/logger"
	"huddle/internal/platform/metrics"
	"huddle/internal/presence"
	"huddle/internal/relationship"
	"huddle/internal/relay"
	"huddle/internal/roomtoken"
	"huddle/internal/snapshot"
	httptransport "huddle/internal/transport/http"
	"huddle/internal/transport/ws"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		sink = kafkaSink
		log.Info("audit sink: kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.AuditTopic)
	} else {
		sink = audit.NewMemorySink(0)
	}
	defer sink.Close()
	auditWorker := audit.NewWorker(sink, 0, log)

	ids := identity.NewInMemoryStore(credentials.NewBcryptVerifier())
	msgLog := message.NewLog(ids, cfg.MessageRetention)

	blob, err := snapshot.OpenBlobStore(cfg.SnapshotBackend, cfg.SnapshotTarget)
	if err != nil {
		return err
	}
	defer blob.Close()
	gateway := snapshot.NewGateway(ids, msgLog, blob, cfg.SweepInterval, m, auditWorker, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gateway.Restore(ctx); err != nil {
		return err
	}

	registry := presence.NewRegistry(ids)
	notifier := relay.NewNotifier(registry, m, log)
	relationships := relationship.NewService(ids, notifier, gateway, auditWorker, m)
	chatSvc := chat.NewService(msgLog, notifier, gateway, auditWorker, m)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.TokenTTL)
	roomTokens := roomtoken.NewJWTIssuer(cfg.JWTSigningKey, 0)

	wsHandler := ws.NewHandler(registry, chatSvc, notifier, m, log)
	handler := httptransport.NewHandler(ids, relationships, msgLog, chatSvc,
		tokens, roomTokens, gateway, auditWorker, m, log)
	router := httptransport.NewRouter(handler, tokens, wsHandler)

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return gateway.Run(ctx) })
	group.Go(func() error { return auditWorker.Run(ctx) })
	group.Go(func() error {
		log.Info("starting huddle", "addr", cfg.Addr, "snapshot_backend", cfg.SnapshotBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
