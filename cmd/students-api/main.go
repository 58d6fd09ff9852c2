// main is the entry point of the Student Records API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file, .env and environment)
//  2. Initialise the logger
//  3. Open the SQLite database (creates the students table)
//  4. Build the router
//  5. Bind the listener and serve in a separate goroutine
//  6. Block until SIGINT / SIGTERM
//  7. Gracefully shut down the server, then close the database
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or with no file at all (built-in defaults, :3000):
//
//	go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/http/middleware"
	"github.com/aanand-mishra/student-records-api/internal/http/router"
	"github.com/aanand-mishra/student-records-api/internal/metrics"
	"github.com/aanand-mishra/student-records-api/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	if err := run(cfg, log); err != nil {
		log.Error("students-api stopped with an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until SIGINT / SIGTERM or a server failure. The database is
// closed before it returns, so main may exit with a status right after.
func run(cfg *config.Config, log *slog.Logger) error {
	storage, err := sqlite.New(cfg)
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("failed to close storage", slog.String("error", err.Error()))
			return
		}
		log.Info("storage closed")
	}()

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	handler := router.New(router.Deps{
		Storage:    storage,
		Auth:       middleware.APIKey{Header: cfg.Auth.Header, Key: cfg.APIKey},
		Metrics:    metrics.NewManager(),
		CORS:       cfg.CORS,
		AuthHeader: cfg.Auth.Header,
	})

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: handler,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Bind before logging readiness so "server started" means the port
	// is actually accepting connections.
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", ln.Addr().String()))

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return errors.New("server stopped unexpectedly")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev:     human-readable text at DEBUG
// staging: JSON at DEBUG
// prod:    JSON at INFO
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
