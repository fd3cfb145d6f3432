package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/cashbook/internal/app"
	"github.com/dvloznov/cashbook/internal/config"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/logger"
	"github.com/dvloznov/cashbook/internal/notionsync"
)

func main() {
	// Parse CLI flags
	envFile := flag.String("env", "", "Path to a .env file (default ./.env if present)")
	txType := flag.String("type", "", "Only mirror this transaction type (CASH, BANK or CONTRA)")
	notionToken := flag.String("notion-token", "", "Notion API token (overrides NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (overrides NOTION_DATABASE_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *notionToken != "" {
		cfg.Notion.Token = *notionToken
	}
	if *notionDBID != "" {
		cfg.Notion.DatabaseID = *notionDBID
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	a, ctx, err := app.New(ctx, cfg)
	log := logger.FromContext(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer a.Close()

	opts := notionsync.Options{DryRun: *dryRun}
	if *txType != "" {
		t, ok := domain.ParseTransactionType(*txType)
		if !ok {
			log.Fatal().Str("type", *txType).Msg("Error: --type must be CASH, BANK or CONTRA")
		}
		opts.Type = t
	}

	syncer, err := a.NotionSyncer()
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Notion is not configured")
	}

	res, err := syncer.SyncTransactions(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}
	if res.Failed > 0 {
		log.Fatal().Int("failed", res.Failed).Msg("Sync finished with failures")
	}

	fmt.Printf("Sync completed successfully: %s\n", res)
}
