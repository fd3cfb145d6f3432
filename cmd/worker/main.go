package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/cashbook/internal/app"
	"github.com/dvloznov/cashbook/internal/config"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/jobs/inmemory"
	"github.com/dvloznov/cashbook/internal/logger"
)

func main() {
	envFile := flag.String("env", "", "Path to a .env file (default ./.env if present)")
	interval := flag.Duration("interval", time.Hour, "How often to enqueue the day export and Notion sync")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	a, ctx, err := app.New(context.Background(), cfg)
	log := logger.FromContext(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer a.Close()

	router := a.JobRouter(ctx)
	if len(router) == 0 {
		log.Fatal().Msg("Nothing to do: configure GCS_BUCKET and/or NOTION_TOKEN")
	}

	// Jobs live in memory only; a restart starts from an empty queue.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Dur("interval", *interval).Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := jobQueue.Start(ctx, router.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	enqueue := func() {
		for jobType := range router {
			job := &jobs.Job{Type: jobType}
			if jobType == jobs.JobTypeExportDay {
				job.Date = a.Today().String()
			}
			if err := jobQueue.Publish(ctx, job); err != nil {
				log.Error().Err(err).Str("job_type", string(jobType)).Msg("Failed to enqueue job")
				continue
			}
			log.Info().Str("job_id", job.JobID).Str("job_type", string(jobType)).Msg("Job enqueued")
		}
	}

	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()

		enqueue()
		for {
			select {
			case <-ticker.C:
				enqueue()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().Msg("Worker service started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	log.Info().Msg("Worker service exited")
}
