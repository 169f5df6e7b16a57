// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/olegiv/college-calendar/internal/config"
	"github.com/olegiv/college-calendar/internal/handler"
	"github.com/olegiv/college-calendar/internal/logging"
	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/middleware"
	"github.com/olegiv/college-calendar/internal/scheduler"
	"github.com/olegiv/college-calendar/internal/service"
	"github.com/olegiv/college-calendar/internal/session"
	"github.com/olegiv/college-calendar/internal/store"
	"github.com/olegiv/college-calendar/internal/version"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "College Calendar - events, reports and chatbot API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_SESSION_SECRET     Session key (required in production, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_DATA_DIR           Directory of the JSON documents (default: ./data)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_SERVER_PORT        Server port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_SESSION_DB         SQLite file for persistent sessions (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_REDIS_URL          Redis URL for chat transcripts (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAL_BACKUP_SCHEDULE    Cron expression for document snapshots (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	m := metrics.New()

	// WARN and ERROR records are counted in the metrics.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})
	logger := slog.New(logging.NewContextHandler(textHandler, func(_ context.Context, r slog.Record) {
		m.LogRecord(strings.ToLower(r.Level.String()))
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	slog.Info("opening data directory", "path", cfg.DataDir)
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	if err := st.Init(ctx); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	sessions, err := session.New(session.Options{
		Lifetime: cfg.SessionLifetime,
		IsDev:    cfg.IsDevelopment(),
		DBPath:   cfg.SessionDBPath,
	})
	if err != nil {
		return fmt.Errorf("initializing sessions: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			slog.Error("error closing session store", "error", err)
		}
	}()
	slog.Info("session manager initialized", "persistent", cfg.UseSQLiteSessions())

	healthDeps := map[string]handler.Pinger{}
	if cfg.UseSQLiteSessions() {
		healthDeps["sessions"] = sessions
	}

	transcripts, err := openTranscripts(cfg, st, healthDeps)
	if err != nil {
		return err
	}
	if c, ok := transcripts.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	ids := store.NewIDGenerator()
	users := service.NewUserService(st.Users)
	events := service.NewEventService(st.Events, ids)
	reports := service.NewReportService(st.Reports, ids)
	chat := service.NewChatService(transcripts, cfg.ChatHistoryLimit)

	if cfg.BackupsEnabled() {
		sched := scheduler.New(st, scheduler.Options{
			Schedule: cfg.BackupSchedule,
			Dir:      cfg.BackupDir,
			Retain:   cfg.BackupRetain,
		}, logger, m)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	handlers := &handler.Handlers{
		Auth:    handler.NewAuthHandler(users, sessions, loginProtection, m),
		Users:   handler.NewUsersHandler(users, m),
		Events:  handler.NewEventsHandler(events, m),
		Reports: handler.NewReportsHandler(reports, m),
		Chat:    handler.NewChatHandler(chat, sessions, m),
		Health:  handler.NewHealthHandler(st.DataDir(), healthDeps, version.Get()),
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogContext)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		slog.Info("CORS enabled", "origins", cfg.AllowedOrigins)
	}

	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.AllowedOrigins, cfg.IsDevelopment())))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(sessions.LoadAndSave)
	r.Use(middleware.LoadIdentity(sessions))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", m.Handler())
	}

	handlers.Register(r, handler.RouteOptions{
		LoginProtection: loginProtection,
		ChatLimiter:     middleware.NewRateLimiter(2, 10),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openTranscripts selects the chat transcript store. Redis is used when
// configured; otherwise transcripts are files in the data directory.
func openTranscripts(cfg *config.Config, st *store.Store, healthDeps map[string]handler.Pinger) (store.TranscriptStore, error) {
	if !cfg.UseRedisChat() {
		t, err := store.NewFileTranscripts(st.ChatDir())
		if err != nil {
			return nil, fmt.Errorf("initializing chat transcripts: %w", err)
		}
		slog.Info("chat transcripts initialized", "backend", "file", "dir", st.ChatDir())
		return t, nil
	}

	t, err := store.NewRedisTranscripts(store.RedisOptions{
		URL:    cfg.RedisURL,
		Prefix: cfg.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	healthDeps["redis"] = t
	slog.Info("chat transcripts initialized", "backend", "redis")
	return t, nil
}
