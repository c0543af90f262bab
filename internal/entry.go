// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/halvard/muninn/internal/api"
	"github.com/halvard/muninn/internal/assist"
	"github.com/halvard/muninn/internal/enrich"
	"github.com/halvard/muninn/internal/index"
	"github.com/halvard/muninn/internal/llm"
	"github.com/halvard/muninn/internal/mcpserver"
	"github.com/halvard/muninn/internal/noteservice"
	"github.com/halvard/muninn/internal/retrieval"
	"github.com/halvard/muninn/internal/sse"
	"github.com/halvard/muninn/internal/storage"
	"github.com/halvard/muninn/internal/vault"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	deps, cleanup, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	deps.api.SSEHandler = broker
	apiRouter := api.NewRouter(deps.api, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault: every file change updates the index, notifies SSE
	// clients, and marks the retrieval corpus stale.
	g.Go(func() error {
		return index.Watch(gCtx, deps.db, deps.store, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishNoteEvent(kind, path)
			deps.snapshot.MarkStale()
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio instead of the HTTP API.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Log to stderr; stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	deps, cleanup, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := mcpserver.New(deps.notes, deps.store, deps.chat, deps.snapshot)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

// services holds everything both entry points share.
type services struct {
	store    storage.Provider
	db       *index.DB
	notes    *noteservice.Service
	snapshot *vault.Snapshot
	chat     *assist.Service
	api      api.Deps
}

// buildServices wires storage, the SQLite index, the vault snapshot, and the
// chat pipeline from configuration. The returned cleanup closes the index.
func buildServices(cfg *Config, logger *slog.Logger) (*services, func(), error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	scanner, err := vault.NewScanner(cfg.Vault.Path, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init scanner: %w", err)
	}
	snapshot := vault.NewSnapshot(scanner, logger)

	notes := noteservice.NewService(store, db, snapshot.MarkStale)

	var chat *assist.Service
	provider, err := llm.NewProvider(cfg.AI)
	if err != nil {
		logger.Warn("chat disabled", slog.String("error", err.Error()))
	} else {
		chat = assist.NewService(retrieval.NewEngine(), provider, snapshot, cfg.Chat.MaxContextNotes, logger)
		logger.Info("chat enabled", slog.String("provider", provider.Name()))
	}

	deps := api.Deps{
		Notes:     notes,
		Chat:      chat,
		Snapshot:  snapshot,
		Books:     enrich.NewBooks(""),
		Wikipedia: enrich.NewWikipedia(""),
		VaultRoot: cfg.Vault.Path,
	}
	if cfg.Enrich.TMDBAPIKey != "" {
		deps.TMDB = enrich.NewTMDB(cfg.Enrich.TMDBAPIKey, "")
	}

	return &services{
		store:    store,
		db:       db,
		notes:    notes,
		snapshot: snapshot,
		chat:     chat,
		api:      deps,
	}, cleanup, nil
}
