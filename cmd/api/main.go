package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/honeypot-ai/internal/app/bootstrap"
	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting honeypot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"providers", cfg.ProviderOrder,
		"session_backend", cfg.SessionBackend,
		"evidence_backend", cfg.EvidenceBackend,
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := bootstrap.Build(startCtx, cfg, logger, prometheus.DefaultRegisterer)
	cancelStart()
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	srv := newServer(cfg, app.Handler)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// Pending final reports finish before exit.
	app.Close()
	logger.Info("server exited")
}

// newServer sizes the write timeout for paced replies, which can hold a
// response for up to ten seconds on top of provider latency.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	write := 30 * time.Second
	if budget := 2*cfg.ProviderTimeout + cfg.ClassifierTimeout + 15*time.Second; budget > write {
		write = budget
	}
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
