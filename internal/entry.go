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

	"github.com/attuneweb/attune/internal/adaptservice"
	"github.com/attuneweb/attune/internal/api"
	"github.com/attuneweb/attune/internal/engine"
	"github.com/attuneweb/attune/internal/genmodel"
	"github.com/attuneweb/attune/internal/profilestore"
	"github.com/attuneweb/attune/internal/sse"
)

// Run starts the application with the given options.
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
		slog.String("store_path", cfg.Store.Path),
		slog.Bool("model_enabled", cfg.Model.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Profile store.
	store, err := profilestore.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init profile store: %w", err)
	}
	defer store.Close()

	// Transformation engine with optional lexicon overrides.
	eng := engine.New()
	if cfg.Lexicon.Path != "" {
		overrides, err := engine.LoadOverrides(cfg.Lexicon.Path)
		if err != nil {
			return fmt.Errorf("load lexicon overrides: %w", err)
		}
		lex, err := engine.DefaultLexicon().Apply(overrides)
		if err != nil {
			return fmt.Errorf("apply lexicon overrides: %w", err)
		}
		eng.SetLexicon(lex)
		logger.Info("Lexicon overrides applied", slog.String("path", cfg.Lexicon.Path))
	}

	// Generative model client, when configured.
	var model adaptservice.ModelClient
	if cfg.Model.Enabled {
		client, err := genmodel.NewClient(genmodel.Config{
			BaseURL:           cfg.Model.URL,
			Token:             cfg.Model.Token,
			Model:             cfg.Model.Name,
			MaxTokens:         cfg.Model.MaxTokens,
			Temperature:       cfg.Model.Temperature,
			TimeoutSeconds:    cfg.Model.TimeoutSeconds,
			RequestsPerMinute: cfg.Model.RequestsPerMinute,
		})
		if err != nil {
			return fmt.Errorf("init model client: %w", err)
		}
		model = client
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build service and router.
	svc := adaptservice.New(store, eng, model, logger)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker.PublishProfileEvent, broker)

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

	// Watch lexicon overrides for hot reload.
	if cfg.Lexicon.Path != "" {
		g.Go(func() error {
			if err := engine.WatchLexicon(gCtx, eng, cfg.Lexicon.Path, logger, broker.PublishLexiconReloaded); err != nil {
				logger.Warn("lexicon watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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
