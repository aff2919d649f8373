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

	"trustregistry/internal/audit"
	"trustregistry/internal/didcomm"
	"trustregistry/internal/didcomm/handlers"
	"trustregistry/internal/didcomm/kafka"
	"trustregistry/internal/didcomm/listener"
	"trustregistry/internal/platform/config"
	"trustregistry/internal/platform/httpserver"
	"trustregistry/internal/platform/logger"
	"trustregistry/internal/storage"
	httptransport "trustregistry/internal/transport/http"
)

// main wires dependencies and runs the two serving surfaces: the message
// listener and the HTTP query facade. Business logic lives in internal.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	storageCfg := storage.Config{
		Backend:          cfg.StorageBackend,
		FilePath:         cfg.FilePath,
		FileSyncInterval: cfg.FileSyncInterval,
		RedisURL:         cfg.RedisURL,
		PostgresDSN:      cfg.PostgresDSN,
		PostgresTable:    cfg.PostgresTable,
	}
	adminRepo, closeAdmin, err := storage.NewAdminRepository(ctx, storageCfg, log)
	if err != nil {
		return err
	}
	defer closeAdmin()

	queryCfg := storageCfg
	queryCfg.Backend = cfg.QueryBackend
	queryRepo, closeQuery, err := storage.NewQueryRepository(ctx, queryCfg, adminRepo)
	if err != nil {
		return err
	}
	defer closeQuery()

	auditLogger := audit.NewSlogLogger(log, audit.Format(cfg.AuditLogFormat))

	transport, closeTransport, err := buildTransport(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeTransport()

	if len(cfg.AdminDIDs) == 0 {
		log.Warn("no admin DIDs configured; every admin request will be rejected")
	}

	dispatcher := handlers.NewDispatcher(transport, cfg.SelfDID, log,
		handlers.NewAdminHandler(adminRepo, cfg.AdminDIDs, auditLogger, log),
		handlers.NewQueryHandler(queryRepo, log),
		handlers.NewProblemReportHandler(log),
	)
	intake := listener.New(transport, dispatcher, log, listener.Config{})

	router := httptransport.NewRouter(httptransport.NewHandler(queryRepo, log))
	srv := httpserver.New(cfg.HTTPAddr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return intake.Run(ctx) })
	g.Go(func() error {
		log.Info("query facade listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildTransport picks the broker transport when brokers are configured and
// the in-memory one otherwise, which keeps local runs dependency-free.
func buildTransport(ctx context.Context, cfg config.Config, log *slog.Logger) (didcomm.Transport, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Warn("no brokers configured; using in-memory transport")
		return didcomm.NewMemoryTransport(), func() {}, nil
	}
	transport, err := kafka.NewTransport(ctx, kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		InboundTopic:  cfg.KafkaInboundTopic,
		OutboundTopic: cfg.KafkaOutboundTopic,
		Group:         cfg.KafkaGroup,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return transport, transport.Close, nil
}
