package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/cashbook/internal/api"
	"github.com/dvloznov/cashbook/internal/app"
	"github.com/dvloznov/cashbook/internal/config"
	"github.com/dvloznov/cashbook/internal/jobs/inmemory"
	"github.com/dvloznov/cashbook/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env", "", "Path to a .env file (default ./.env if present)")
		addr    = flag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR / PORT)")
		migrate = flag.Bool("migrate", true, "Apply pending schema migrations on startup")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	ctx := context.Background()
	a, ctx, err := app.New(ctx, cfg)
	log := logger.FromContext(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cash book")
	}
	defer a.Close()

	if *migrate {
		n, err := a.Stores.Migrate(ctx, "api")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Int("applied", n).Msg("Schema up to date")
	}

	if err := a.Book.Reload(ctx); err != nil {
		// The API still serves; views report the failed load until a reload succeeds.
		log.Error().Err(err).Msg("Initial ledger load failed")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	router := a.JobRouter(ctx)
	if err := jobQueue.Start(workerCtx, router.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}
	log.Info().Int("job_types", len(router)).Msg("Job worker started")

	handler := api.NewRouter(api.Deps{
		Book:        a.Book,
		Customers:   a.Customers,
		JobStore:    jobStore,
		Publisher:   jobQueue,
		Location:    a.Location,
		Log:         a.Log,
		APIKey:      cfg.HTTP.APIKey,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	if cfg.HTTP.APIKey == "" {
		log.Warn().Msg("No API key configured - the API is open")
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
