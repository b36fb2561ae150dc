package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	nshttp "github.com/Strob0t/notestream/internal/adapter/http"
	"github.com/Strob0t/notestream/internal/adapter/memory"
	nsnats "github.com/Strob0t/notestream/internal/adapter/nats"
	nsotel "github.com/Strob0t/notestream/internal/adapter/otel"
	"github.com/Strob0t/notestream/internal/adapter/postgres"
	"github.com/Strob0t/notestream/internal/adapter/ristretto"
	"github.com/Strob0t/notestream/internal/config"
	"github.com/Strob0t/notestream/internal/logger"
	"github.com/Strob0t/notestream/internal/middleware"
	"github.com/Strob0t/notestream/internal/port/database"
	"github.com/Strob0t/notestream/internal/resilience"
	"github.com/Strob0t/notestream/internal/server"
	"github.com/Strob0t/notestream/internal/service"
	"github.com/Strob0t/notestream/internal/stream"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		err = runMigrate(os.Args[2:])
	} else {
		err = run(os.Args[1:])
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closer := logger.New(cfg.Logging)
	defer closer.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"file", cfgPath,
		"addr", cfg.Stream.Addr,
		"log_level", cfg.Logging.Level,
		"postgres", cfg.Postgres.DSN != "",
		"nats", cfg.NATS.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---

	shutdownOTel, err := nsotel.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := nsotel.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Store ---

	var store database.Store
	if cfg.Postgres.DSN != "" {
		applied, err := postgres.Migrate(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied", "versions", applied)

		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		slog.Info("postgres connected")
		store = postgres.NewStore(pool)
	} else {
		slog.Warn("no postgres dsn configured, notes are kept in memory")
		store = memory.NewStore()
	}

	// --- Lookup path: store <- cache <- breaker ---

	hooks := service.NewHooks()

	var (
		reader database.Reader = store
		cached *service.CachedReader
	)
	if cfg.Cache.MaxSizeMB > 0 {
		cache, err := ristretto.New(cfg.Cache.MaxSizeMB<<20, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer cache.Close()

		cached = service.NewCachedReader(reader, cache)
		hooks.Register(cached)
		reader = cached
	}
	breaker := resilience.NewBreaker("note-store", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	reader = service.NewGuardedReader(reader, breaker)

	// --- Stream ---

	hub := stream.NewHub(service.NewSnapshotService(reader), stream.Options{
		WriteTimeout:      cfg.Stream.WriteTimeout,
		HeartbeatInterval: cfg.Stream.HeartbeatInterval,
		MaxOnboarding:     cfg.Stream.MaxOnboarding,
		FanoutWorkers:     cfg.Stream.FanoutWorkers,
	}, metrics)
	bridge := service.NewMutationBridge(reader, hub)

	api := &nshttp.Handlers{
		Notes:       service.NewNoteService(store, hooks),
		Subscribers: hub,
		Store:       store,
		Breaker:     breaker,
	}

	// --- NATS relay ---

	if cfg.NATS.URL != "" {
		queue, err := nsnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		api.Queue = queue

		relay := service.NewRelay(queue, bridge, metrics)
		if cached != nil {
			relay.WithInvalidator(cached)
		}
		stopRelay, err := relay.Start(ctx)
		if err != nil {
			return fmt.Errorf("relay: %w", err)
		}
		defer stopRelay()
	}

	// --- HTTP ---

	limiter := middleware.NewRateLimiter(cfg.Rate)
	limiter.StartCleanup(ctx)

	srv := server.New(cfg.Stream, server.Deps{
		Hub:         hub,
		Hooks:       hooks,
		Observer:    bridge,
		Store:       store,
		API:         api,
		RateLimiter: limiter,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
