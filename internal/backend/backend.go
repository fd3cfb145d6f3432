// Package backend opens the ledger and customer stores selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/cashbook/internal/config"
	"github.com/dvloznov/cashbook/internal/customers"
	infraBQ "github.com/dvloznov/cashbook/internal/infra/bigquery"
	"github.com/dvloznov/cashbook/internal/infra/memory"
	"github.com/dvloznov/cashbook/internal/infra/postgres"
	"github.com/dvloznov/cashbook/internal/infra/sqlite"
	"github.com/dvloznov/cashbook/internal/ledger"
	"github.com/dvloznov/cashbook/internal/logger"
	"github.com/dvloznov/cashbook/internal/migrate"
	"github.com/dvloznov/cashbook/migrations"
)

// Stores bundles the stores of one backend. Call Close when done.
type Stores struct {
	Backend   config.Backend
	Ledger    ledger.Store
	Customers customers.Store

	applier migrate.Applier
	vars    map[string]string
	closers []func() error
}

// Open connects to the backend named in cfg.Store.
func Open(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	log := logger.FromContext(ctx)
	s := &Stores{Backend: cfg.Backend}

	switch cfg.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		s.Ledger, s.Customers = store, store

	case config.BackendSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("Open: sqlite: %w", err)
		}
		repo := sqlite.NewLedgerRepository(conn)
		s.Ledger, s.Customers = repo, repo
		s.applier = migrate.NewSQLApplier(conn.DB(), migrate.DialectSQLite)
		s.closers = append(s.closers, conn.Close)

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("Open: postgres: %w", err)
		}
		repo := postgres.NewLedgerRepository(db)
		s.Ledger, s.Customers = repo, repo
		s.applier = migrate.NewSQLApplier(db.DB, migrate.DialectPostgres)
		s.closers = append(s.closers, db.Close)

	case config.BackendBigQuery:
		ds := infraBQ.Dataset{ProjectID: cfg.BigQuery.ProjectID, DatasetID: cfg.BigQuery.DatasetID}
		repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("Open: bigquery: %w", err)
		}
		s.Ledger, s.Customers = repo, repo
		s.applier = infraBQ.NewMigrationApplier(repo.Client(), ds)
		s.vars = map[string]string{"PROJECT_ID": ds.ProjectID, "DATASET_ID": ds.DatasetID}
		s.closers = append(s.closers, repo.Close)

	default:
		return nil, fmt.Errorf("Open: unknown store backend %q", cfg.Backend)
	}

	log.Debug().Str("backend", string(cfg.Backend)).Msg("Store opened")
	return s, nil
}

// Migrate applies the pending schema migrations for the backend and returns
// how many ran. The memory backend has no schema.
func (s *Stores) Migrate(ctx context.Context, appliedBy string) (int, error) {
	if s.applier == nil {
		return 0, nil
	}
	all, err := migrate.Read(migrations.FS, string(s.Backend), s.vars)
	if err != nil {
		return 0, fmt.Errorf("Migrate: %w", err)
	}
	return migrate.Run(ctx, s.applier, all, appliedBy)
}

// Pending lists the migrations Migrate would apply.
func (s *Stores) Pending(ctx context.Context) ([]migrate.Migration, error) {
	if s.applier == nil {
		return nil, nil
	}
	all, err := migrate.Read(migrations.FS, string(s.Backend), s.vars)
	if err != nil {
		return nil, fmt.Errorf("Pending: %w", err)
	}
	if err := s.applier.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("Pending: %w", err)
	}
	applied, err := s.applier.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("Pending: %w", err)
	}
	return migrate.Pending(all, applied)
}

// Close releases every connection held by the stores.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
