package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/calehr/taskbridge/internal/adapter/asana"
	tbhttp "github.com/calehr/taskbridge/internal/adapter/http"
	tbnats "github.com/calehr/taskbridge/internal/adapter/nats"
	"github.com/calehr/taskbridge/internal/adapter/otel"
	"github.com/calehr/taskbridge/internal/adapter/postgres"
	"github.com/calehr/taskbridge/internal/adapter/ristretto"
	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/logger"
	"github.com/calehr/taskbridge/internal/middleware"
	"github.com/calehr/taskbridge/internal/resilience"
	"github.com/calehr/taskbridge/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Observability ---
	otelShutdown, err := otel.Setup(ctx, cfg.Logging.Service, cfg.OTel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(sctx)
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS
	queue, err := tbnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()

	// Snapshot cache
	snapCache, err := ristretto.New(cfg.Cache.MaxSizeMB)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer snapCache.Close()

	// --- Asana client ---
	asanaClient := asana.NewClient(cfg.Asana)
	asanaClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
	oauthClient := asana.NewOAuthClient(cfg.Asana)

	// --- Services ---
	store := postgres.NewStore(pool)
	locks := postgres.NewLocker(pool)

	mappingSvc := service.NewMappingService(store, log)
	tokenSvc := service.NewTokenService(store, oauthClient, log, cfg.Sync)
	agentSvc := service.NewAgentService(store, snapCache, queue, log, cfg.Cache)
	engine := service.NewEngine(store, tokenSvc, asanaClient, agentSvc, agentSvc,
		locks, queue, metrics, log, cfg.Sync)

	cancelAcks, err := agentSvc.StartAckSubscriber(ctx)
	if err != nil {
		return fmt.Errorf("ack subscriber: %w", err)
	}
	defer cancelAcks()

	// --- HTTP ---
	handlers := &tbhttp.Handlers{
		Mappings: mappingSvc,
		Agent:    agentSvc,
		Tokens:   tokenSvc,
		Sync:     engine,
		DB:       pool,
		Queue:    queue,
	}

	r := chi.NewRouter()

	r.Use(tbhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.RequestID)
	r.Use(tbhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	tbhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second, // sync trigger blocks for up to a full pass
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
