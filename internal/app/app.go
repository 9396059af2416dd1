// Package app provides application orchestration and component lifecycle
// management for the ChatFlow analytics service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"

	"github.com/chatflowhq/chatflow/internal/config"
	"github.com/chatflowhq/chatflow/internal/database"
	"github.com/chatflowhq/chatflow/internal/server"
)

// App represents the application and its components.
type App struct {
	cfg       *config.Config
	db        *sqlx.DB
	store     database.Store
	sessions  *server.Sessions
	server    *server.Server
	scheduler gocron.Scheduler
}

// New creates a new application instance with configured components. It
// configures logging, loads configuration, and sets up all required
// services. Returns an error if any component initialization fails.
func New() (*App, error) {
	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := ConfigureLogging(cfg); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	slog.Info("configuration loaded", "log_level", cfg.LogLevel, "http_addr", cfg.HTTPAddr)

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	store := database.NewStore(db, slog.Default())

	sessions := server.NewSessions(cfg.SessionTTL)
	srv := server.New(cfg, store, sessions, slog.Default())

	scheduler, err := newScheduler(cfg, store, sessions)
	if err != nil {
		database.CloseDB(db)
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	slog.Info("application initialization complete",
		"duration_ms", time.Since(start).Milliseconds())

	return &App{
		cfg:       cfg,
		db:        db,
		store:     store,
		sessions:  sessions,
		server:    srv,
		scheduler: scheduler,
	}, nil
}

// newScheduler registers the periodic jobs: session sweeping and SQLite
// maintenance.
func newScheduler(cfg *config.Config, store database.Store, sessions *server.Sessions) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if _, err := s.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() { sessions.Sweep() }),
		gocron.WithName("session_sweep"),
	); err != nil {
		return nil, fmt.Errorf("failed to register session sweep job: %w", err)
	}

	if _, err := s.NewJob(
		gocron.DurationJob(cfg.MaintenanceInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := store.RunMaintenance(ctx); err != nil {
				slog.Error("scheduled maintenance failed", "error", err)
			}
		}),
		gocron.WithName("sql_maintenance"),
	); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	return s, nil
}

// Start launches the scheduler and the HTTP server. It blocks until the
// server stops.
func (a *App) Start() error {
	a.scheduler.Start()
	slog.Info("application started", "jobs", len(a.scheduler.Jobs()))
	return a.server.Start()
}

// Stop gracefully shuts down all application components. The context
// bounds how long shutdown may take.
func (a *App) Stop(ctx context.Context) error {
	slog.Info("initiating application shutdown")

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
	}
	database.CloseDB(a.db)

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	slog.Info("application shutdown complete")
	return nil
}

// ConfigureLogging installs the default slog handler according to the
// configured level and format.
func ConfigureLogging(cfg *config.Config) error {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %q", cfg.LogLevel)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
