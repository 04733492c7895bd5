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

	"github.com/JulianC775/CodeClip/internal/api"
	"github.com/JulianC775/CodeClip/internal/clipsvc"
	"github.com/JulianC775/CodeClip/internal/mcpserver"
	"github.com/JulianC775/CodeClip/internal/persist"
	"github.com/JulianC775/CodeClip/internal/sse"
	"github.com/JulianC775/CodeClip/internal/store"
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
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	provider, fsProvider, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	// SSE broker.
	broker := sse.NewBroker()

	// Seed the snippet store from the durable layer.
	storeOpts := []store.Option{
		store.WithObserver(broker.PublishSnippetEvent),
	}
	if cfg.Store.DebounceMS > 0 {
		storeOpts = append(storeOpts, store.WithDebounce(time.Duration(cfg.Store.DebounceMS)*time.Millisecond))
	}
	st, err := store.New(provider, logger, storeOpts...)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	svc := clipsvc.NewService(st)

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
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the store file for external edits (fs backend only).
	if fsProvider != nil {
		g.Go(func() error {
			return persist.Watch(gCtx, fsProvider, logger, svc.Reload)
		})
	}

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

		// Flush any pending debounced save before the broker and
		// provider go away; the last mutation must be durable.
		if err := svc.Close(); err != nil {
			logger.Error("Store flush error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server with the given options.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// MCP speaks on stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	provider, _, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	st, err := store.New(provider, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	svc := clipsvc.NewService(st)
	defer svc.Close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc).ServeStdio()
}

// openProvider builds the configured persistence backend. The second
// return value is non-nil only for the FS backend, which supports the
// store-file watcher.
func openProvider(cfg *Config) (persist.Provider, *persist.FS, error) {
	switch cfg.Store.Backend {
	case BackendSQLite:
		db, err := persist.OpenSQLite(cfg.Store.Path, cfg.Store.MaxBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return db, nil, nil
	default:
		fs, err := persist.NewFS(cfg.Store.Path, cfg.Store.MaxBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("init fs store: %w", err)
		}
		return fs, fs, nil
	}
}
