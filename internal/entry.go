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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/darkroom/internal/api"
	"github.com/starford/darkroom/internal/blob"
	"github.com/starford/darkroom/internal/camera"
	"github.com/starford/darkroom/internal/gallery"
	"github.com/starford/darkroom/internal/mcpserver"
	"github.com/starford/darkroom/internal/platform"
	"github.com/starford/darkroom/internal/prefs"
	"github.com/starford/darkroom/internal/sse"
	"github.com/starford/darkroom/internal/storage"
)

// Version is reported by the MCP server handshake.
var Version = "dev"

type components struct {
	logger  *slog.Logger
	prefs   *prefs.DB
	broker  *sse.Broker
	svc     *gallery.Service
	handler http.Handler
}

func (c *components) close() {
	c.broker.Close()
	if err := c.prefs.Close(); err != nil {
		c.logger.Warn("close preferences", slog.String("error", err.Error()))
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	return start(ctx, false, opts)
}

// RunMCP serves the MCP tools over stdio. The HTTP server keeps running
// alongside it so object URLs and stored files stay reachable.
func RunMCP(ctx context.Context, opts ...Option) error {
	return start(ctx, true, opts)
}

func start(ctx context.Context, serveMCP bool, opts []Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("public_url", cfg.App.HTTP.PublicURL),
		slog.String("platform", cfg.Platform.Mode),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("preferences_path", cfg.Preferences.Path),
		slog.String("spool_path", cfg.Camera.SpoolPath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           c.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	stop, cancel := context.WithCancel(gCtx)
	defer cancel()

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if serveMCP {
		mcpSrv := mcpserver.New(c.svc, Version)
		g.Go(func() error {
			defer cancel()
			logger.Info("Starting MCP server on stdio")
			if err := mcpSrv.Serve(stop, os.Stdin, os.Stdout); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-stop.Done():
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

func build(ctx context.Context, cfg *Config, logger *slog.Logger) (*components, error) {
	for _, dir := range []string{cfg.Storage.Path, cfg.Camera.SpoolPath, filepath.Dir(cfg.Preferences.Path)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	store, err := storage.NewFS(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := prefs.Open(cfg.Preferences.Path)
	if err != nil {
		return nil, fmt.Errorf("init preferences: %w", err)
	}

	registry := blob.NewRegistry(cfg.App.HTTP.PublicURL)

	cam, err := camera.NewFolder(cfg.Camera.SpoolPath, cfg.Camera.Settle, registry, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init camera: %w", err)
	}

	broker := sse.NewBroker(2 * time.Second)

	svc := gallery.New(cam, store, db,
		platform.NewStatic(cfg.Platform.Mode),
		platform.NewConverter(cfg.App.HTTP.PublicURL),
		gallery.WithLogger(logger),
		gallery.WithEventCallback(broker.PublishGalleryEvent),
	)

	if err := svc.LoadSaved(ctx); err != nil {
		logger.Warn("restore saved photos failed", slog.String("error", err.Error()))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := db.Keys(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	// Loaded directly by image elements, outside bearer auth.
	r.Mount(blob.PathPrefix, registry.Handler())
	r.Get(platform.FilePrefix+"/*", api.NewFileHandler(store.Root()).ServeFile)

	return &components{
		logger:  logger,
		prefs:   db,
		broker:  broker,
		svc:     svc,
		handler: r,
	}, nil
}
