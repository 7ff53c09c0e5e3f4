package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/vecino-digital/internal/catalog"
	"github.com/msomdec/vecino-digital/internal/config"
	"github.com/msomdec/vecino-digital/internal/handler"
	"github.com/msomdec/vecino-digital/internal/repository"
	"github.com/msomdec/vecino-digital/internal/service"
	"github.com/msomdec/vecino-digital/internal/view"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if cfg.Session.Generated() {
		slog.Warn("no session secret configured, generated one; sessions end on restart")
	}
	if !cfg.Session.CookieSecure {
		slog.Warn("session cookie is not marked Secure")
	}

	lessons := catalog.Default()
	if cfg.CatalogPath != "" {
		lessons, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("catalog loaded", "lessons", lessons.Len())

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := repository.Open(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	slog.Info("storage ready", "driver", cfg.Storage.Driver)

	progress := service.LoadProgressStore(ctx, kv, cfg.Storage.ProgressKey)
	slog.Info("progress loaded", "completed", progress.CompletedCount())

	sessions := service.NewSessionManager(lessons, progress, cfg.Session.IdleTimeout)
	tokens := service.NewSessionTokens(cfg.Session.Secret, 0)
	limiter := service.NewTokenBucket(float64(cfg.Session.CreatePerMinute)/60, float64(cfg.Session.CreatePerMinute))

	go sessions.Run(ctx, time.Minute)
	go limiter.Run(ctx, 5*time.Minute, 10*time.Minute)

	branding := view.Branding{AppName: cfg.Branding.AppName, Municipality: cfg.Branding.Municipality}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, sessions, tokens, limiter, branding, cfg.Session.CookieSecure)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
