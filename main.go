package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fest-backend/internal/config"
	"fest-backend/internal/container"
	"fest-backend/pkg/database"
	"fest-backend/pkg/logger"
)

const (
	connectTimeout  = 15 * time.Second
	shutdownTimeout = 25 * time.Second
)

// closer is one step of the shutdown sequence.
type closer struct {
	name  string
	close func(ctx context.Context) error
}

// shutdown runs steps in order and keeps going past failures.
func shutdown(ctx context.Context, log *logger.Logger, steps []closer) error {
	log.Info("Starting graceful shutdown...")

	var errs []error
	for _, step := range steps {
		stepLog := log.WithField("resource", step.name)
		if err := step.close(ctx); err != nil {
			stepLog.WithError(err).Error("Failed to close resource")
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		stepLog.Info("Resource closed")
	}
	return errors.Join(errs...)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fest-backend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"cache":       cfg.RedisURL != "",
		"version":     container.Version,
	}).Info("Starting fest-backend server")

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), connectTimeout)
	db, err := database.NewPostgresDB(connectCtx, cfg.DatabaseURL, cfg.DatabaseReadURL)
	cancelConnect()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	c, err := container.New(cfg, log, db)
	if err != nil {
		db.Close()
		return fmt.Errorf("build container: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// The server stops first so in-flight scans finish before the pools go away.
	steps := []closer{{name: "http_server", close: server.Shutdown}}
	if c.HasRedis() {
		steps = append(steps, closer{name: "redis", close: func(context.Context) error {
			return c.RedisClient.Close()
		}})
	}
	steps = append(steps, closer{name: "postgres", close: func(context.Context) error {
		db.Close()
		return nil
	}})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("Server failed, initiating shutdown")
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(shutdownCtx, log, steps); err != nil {
		return errors.Join(runErr, err)
	}

	log.Info("Application shutdown complete")
	return runErr
}
