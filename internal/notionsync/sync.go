// Package notionsync mirrors ledger transactions into a Notion database.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
	"github.com/dvloznov/cashbook/internal/logger"
)

// BatchSize is the number of transactions logged as one batch.
const BatchSize = 100

// Options narrows a sync run.
type Options struct {
	// Type limits the mirror to one transaction type. Pages of other types are left alone.
	Type   domain.TransactionType
	DryRun bool
}

// Result counts what a sync run did, or would do in a dry run.
type Result struct {
	Created  int
	Archived int
	Skipped  int
	Failed   int
}

func (r Result) String() string {
	return fmt.Sprintf("created=%d archived=%d skipped=%d failed=%d", r.Created, r.Archived, r.Skipped, r.Failed)
}

// Syncer mirrors the ledger store into one Notion database.
type Syncer struct {
	store      ledger.Store
	client     NotionService
	databaseID string
}

// NewSyncer creates a Syncer.
func NewSyncer(store ledger.Store, client NotionService, databaseID string) *Syncer {
	return &Syncer{store: store, client: client, databaseID: databaseID}
}

// SyncTransactions makes the Notion database match the ledger:
//  1. pages whose transaction no longer exists are archived
//  2. transactions without a page get one
//
// Ledger transactions are never edited, so existing pages are skipped.
// Failures on single pages are counted and logged; the run continues.
func (s *Syncer) SyncTransactions(ctx context.Context, opts Options) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	log.Info().
		Str("type", string(opts.Type)).
		Bool("dry_run", opts.DryRun).
		Msg("Starting transaction sync to Notion")

	txs, err := s.store.Select(ctx, ledger.Query{
		Filter:  ledger.Filter{Type: opts.Type},
		OrderBy: ledger.OrderByDate,
	})
	if err != nil {
		return res, fmt.Errorf("failed to query transactions: %w", err)
	}
	log.Info().Int("transaction_count", len(txs)).Msg("Retrieved transactions from ledger")

	valid := make(map[string]bool, len(txs))
	for _, tx := range txs {
		valid[tx.ID] = true
	}

	pages, err := queryAllNotionPages(ctx, s.client, s.databaseID)
	if err != nil {
		return res, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		if opts.Type != "" && extractType(page) != string(opts.Type) {
			continue
		}

		txID := extractTransactionID(page)
		if txID != "" && valid[txID] {
			existing[txID] = true
			continue
		}

		if opts.DryRun {
			log.Info().Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			res.Archived++
			continue
		}
		if err := s.client.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Archived++
	}

	for i := 0; i < len(txs); i += BatchSize {
		end := min(i+BatchSize, len(txs))
		log.Debug().Int("batch_start", i).Int("batch_end", end).Msg("Processing batch")

		for _, tx := range txs[i:end] {
			if existing[tx.ID] {
				res.Skipped++
				continue
			}
			if opts.DryRun {
				log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would create new Notion page")
				res.Created++
				continue
			}

			page, err := s.client.CreatePage(ctx, s.databaseID, TransactionToNotionProperties(tx))
			if err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			log.Debug().Str("transaction_id", tx.ID).Str("page_id", string(page.ID)).Msg("Created Notion page")
			res.Created++
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("archived", res.Archived).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Transaction sync completed")
	return res, nil
}

// HandleJob is a jobs.JobHandler for JobTypeNotionSync. A run with page
// failures is reported as an error so the queue retries it.
func (s *Syncer) HandleJob(ctx context.Context, job *jobs.Job) error {
	opts := Options{}
	if job.TransactionType != "" {
		t, ok := domain.ParseTransactionType(job.TransactionType)
		if !ok {
			return fmt.Errorf("notion sync job %s: unknown transaction type %q", job.JobID, job.TransactionType)
		}
		opts.Type = t
	}

	res, err := s.SyncTransactions(ctx, opts)
	job.Result = res.String()
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("notion sync: %d pages failed", res.Failed)
	}
	return nil
}

// queryAllNotionPages queries all pages from a Notion database, following pagination.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
