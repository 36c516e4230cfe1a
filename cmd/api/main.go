package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/ledger-core/internal/api/handlers"
	"github.com/dvloznov/ledger-core/internal/app"
	"github.com/dvloznov/ledger-core/internal/config"
	"github.com/dvloznov/ledger-core/internal/logger"
)

func main() {
	envFile := flag.String("env", ".env", "Path to a .env file (optional)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	ctx := context.Background()

	svc, provider, err := app.NewService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer provider.Close()

	handler := handlers.NewRouter(svc, handlers.Defaults{
		Profile:          cfg.Profile,
		ShowZeroBalances: cfg.ShowZeroBalances,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("profile", cfg.Profile).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Abandon background register rebuilds and wait for them to return.
	if err := svc.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping register runs")
	}

	log.Info().Msg("Server exited")
}
