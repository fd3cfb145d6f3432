// Package app assembles the cash book from configuration for the binaries
// under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/cashbook/internal/backend"
	"github.com/dvloznov/cashbook/internal/config"
	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/export"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
	"github.com/dvloznov/cashbook/internal/logger"
	"github.com/dvloznov/cashbook/internal/notionsync"
)

// App holds the configured stores and services.
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Location  *time.Location
	Stores    *backend.Stores
	Book      *ledger.Book
	Customers *customers.Service

	uploader *export.GCSUploader
}

// Option configures New.
type Option func(*logger.Options)

// WithLogOutput sends log output to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *logger.Options) { o.Out = w }
}

// New validates cfg, configures logging and opens the stores. The returned
// context carries the logger. The book is not loaded yet.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, context.Context, error) {
	logOpts := logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	for _, opt := range opts {
		opt(&logOpts)
	}
	log := logger.NewWithOptions(logOpts)
	logger.SetDefault(log)
	ctx = logger.WithContext(ctx, log)

	if err := cfg.Validate(); err != nil {
		return nil, ctx, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, ctx, err
	}

	stores, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		return nil, ctx, err
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		Location:  loc,
		Stores:    stores,
		Book:      ledger.NewBook(stores.Ledger, ledger.WithRecentLimit(cfg.Ledger.RecentLimit)),
		Customers: customers.NewService(stores.Customers, stores.Ledger),
	}
	log.Info().
		Str("backend", string(cfg.Store.Backend)).
		Str("timezone", loc.String()).
		Msg("Cash book opened")
	return a, ctx, nil
}

// Today is the current calendar date in the configured zone.
func (a *App) Today() civil.Date {
	return ledger.Today(time.Now(), a.Location)
}

// Storage returns the shared Cloud Storage client, creating it on first use.
func (a *App) Storage(ctx context.Context) (*export.GCSUploader, error) {
	if a.uploader == nil {
		u, err := export.NewGCSUploader(ctx)
		if err != nil {
			return nil, err
		}
		a.uploader = u
	}
	return a.uploader, nil
}

// Exporter returns a day exporter backed by Cloud Storage. It fails when no
// bucket is configured.
func (a *App) Exporter(ctx context.Context) (*export.Exporter, error) {
	if a.Config.Export.Bucket == "" {
		return nil, errors.New("no export bucket configured (set GCS_BUCKET)")
	}
	u, err := a.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return export.NewExporter(a.Stores.Ledger, u, a.Config.Export.Bucket, a.Config.Export.Prefix), nil
}

// NotionSyncer returns the Notion mirror. It fails when Notion is not configured.
func (a *App) NotionSyncer() (*notionsync.Syncer, error) {
	if a.Config.Notion.Token == "" || a.Config.Notion.DatabaseID == "" {
		return nil, errors.New("notion is not configured (set NOTION_TOKEN and NOTION_DATABASE_ID)")
	}
	client := notionsync.NewNotionClient(a.Config.Notion.Token)
	return notionsync.NewSyncer(a.Stores.Ledger, client, a.Config.Notion.DatabaseID), nil
}

// JobRouter registers a handler for every job type that is configured.
// Unconfigured types are logged and left out, so their jobs fail.
func (a *App) JobRouter(ctx context.Context) jobs.Router {
	router := jobs.Router{}

	if exp, err := a.Exporter(ctx); err != nil {
		a.Log.Warn().Err(err).Msg("Day export jobs disabled")
	} else {
		router[jobs.JobTypeExportDay] = exp.HandleJob
	}

	if syncer, err := a.NotionSyncer(); err != nil {
		a.Log.Warn().Err(err).Msg("Notion sync jobs disabled")
	} else {
		router[jobs.JobTypeNotionSync] = syncer.HandleJob
	}
	return router
}

// Close releases the stores and the storage client.
func (a *App) Close() error {
	var errs []error
	if a.uploader != nil {
		if err := a.uploader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage client: %w", err))
		}
	}
	if err := a.Stores.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing stores: %w", err))
	}
	return errors.Join(errs...)
}
