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

	"github.com/dayplanhq/dayplan/internal/adapter/gemini"
	dphttp "github.com/dayplanhq/dayplan/internal/adapter/http"
	dpnats "github.com/dayplanhq/dayplan/internal/adapter/nats"
	dpotel "github.com/dayplanhq/dayplan/internal/adapter/otel"
	"github.com/dayplanhq/dayplan/internal/adapter/postgres"
	"github.com/dayplanhq/dayplan/internal/adapter/ristretto"
	"github.com/dayplanhq/dayplan/internal/config"
	"github.com/dayplanhq/dayplan/internal/interpreter"
	"github.com/dayplanhq/dayplan/internal/logger"
	"github.com/dayplanhq/dayplan/internal/middleware"
	"github.com/dayplanhq/dayplan/internal/port/messagequeue"
	"github.com/dayplanhq/dayplan/internal/port/textgen"
	"github.com/dayplanhq/dayplan/internal/resilience"
	"github.com/dayplanhq/dayplan/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

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
		"nats_enabled", cfg.NATS.URL != "",
		"gemini_enabled", cfg.Gemini.APIKey != "",
	)

	ctx := context.Background()

	// --- Infrastructure ---

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

	// NATS is optional; with no URL configured, task events are not published.
	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := dpnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = q.Close() }()
		queue = q
		slog.Info("nats connected", "url", cfg.NATS.URL)
	}

	userCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer userCache.Close()

	// --- Observability ---

	shutdownTracer := dpotel.InitTracer(cfg.Logging.Service)
	if shutdownTracer != nil {
		defer func() { _ = shutdownTracer(ctx) }()
	}

	metrics, err := dpotel.NewMetrics()
	if err != nil {
		slog.Warn("metrics disabled", "error", err)
		metrics = nil
	}

	// --- Interpreter ---

	// Without an API key the Gemini client stays nil and commands are
	// interpreted by the pattern parser alone.
	var gen textgen.Generator
	model := cfg.Gemini.Model
	if cfg.Gemini.APIKey != "" {
		client := gemini.NewClient(cfg.Gemini)
		client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		gen = client
		model = client.Model()
	}
	interp := interpreter.NewLLMInterpreter(gen, interpreter.NewPatternInterpreter(), log, metrics, model)

	// --- Services ---

	store := postgres.NewStore(pool)
	authSvc := service.NewAuthService(store, userCache, &cfg.Auth)
	taskSvc := service.NewTaskService(store, queue, metrics)
	commandSvc := service.NewCommandService(taskSvc, interp, metrics)

	// --- HTTP ---

	handlers := dphttp.NewHandlers(authSvc, taskSvc, commandSvc)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(dphttp.CORS(cfg.Server.CORSOrigin))
	r.Use(dphttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(dpotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.Auth(authSvc))

	dphttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
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
