package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/cashbook/internal/app"
	"github.com/dvloznov/cashbook/internal/config"
	"github.com/dvloznov/cashbook/internal/logger"
)

var (
	envFile   = flag.String("env", "", "Path to a .env file (default ./.env if present)")
	appliedBy = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	status    = flag.Bool("status", false, "List pending migrations without applying them")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	a, ctx, err := app.New(ctx, cfg)
	log := logger.FromContext(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer a.Close()

	if *status {
		pending, err := a.Stores.Pending(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read migration status")
		}
		if len(pending) == 0 {
			fmt.Println("No pending migrations. Schema is up to date.")
			return
		}
		for _, m := range pending {
			fmt.Printf("  [PENDING] %04d_%s\n", m.Version, m.Name)
		}
		return
	}

	n, err := a.Stores.Migrate(ctx, *appliedBy)
	if err != nil {
		log.Fatal().Err(err).Int("applied", n).Msg("Migration failed")
	}

	if n == 0 {
		fmt.Println("No new migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("Successfully applied %d migration(s)\n", n)
	}
}
