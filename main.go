package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"products/internal/app"
	"products/internal/config"
	"products/internal/logger"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(os.Stdout, cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("Server gracefully stopped")
}

// run serves HTTP until ctx is canceled, then shuts the server down.
func run(ctx context.Context, cfg *config.Config) error {
	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("error closing resources")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.AppPort).
			Str("store", cfg.StoreDriver).
			Str("table", cfg.TableName()).
			Msg("Starting server")
		errCh <- application.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	if err := application.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("error during Fiber shutdown: %w", err)
	}
	return nil
}
