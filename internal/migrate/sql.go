package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Dialect selects the placeholder style of a database/sql driver.
type Dialect int

const (
	// DialectPostgres uses $1, $2 placeholders.
	DialectPostgres Dialect = iota
	// DialectSQLite uses ? placeholders.
	DialectSQLite
)

// SQLApplier applies migrations through database/sql.
type SQLApplier struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLApplier creates an applier for db.
func NewSQLApplier(db *sql.DB, dialect Dialect) *SQLApplier {
	return &SQLApplier{db: db, dialect: dialect}
}

// EnsureTable implements Applier.
func (a *SQLApplier) EnsureTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			checksum   TEXT,
			applied_by TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("EnsureTable: %w", err)
	}
	return nil
}

// Applied implements Applier.
func (a *SQLApplier) Applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT version, name, applied_at, checksum, applied_by
		FROM schema_migrations
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("Applied: query: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			am        AppliedMigration
			appliedAt string
			checksum  sql.NullString
			appliedBy sql.NullString
		)
		if err := rows.Scan(&am.Version, &am.Name, &appliedAt, &checksum, &appliedBy); err != nil {
			return nil, fmt.Errorf("Applied: scan: %w", err)
		}
		am.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedAt)
		am.Checksum = checksum.String
		am.AppliedBy = appliedBy.String
		applied = append(applied, am)
	}
	return applied, rows.Err()
}

// Apply implements Applier. The migration and its bookkeeping row commit together.
func (a *SQLApplier) Apply(ctx context.Context, m Migration, appliedBy string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Apply: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("Apply: exec: %w", err)
	}

	insert := `INSERT INTO schema_migrations (version, name, applied_at, checksum, applied_by) VALUES ($1, $2, $3, $4, $5)`
	if a.dialect == DialectSQLite {
		insert = `INSERT INTO schema_migrations (version, name, applied_at, checksum, applied_by) VALUES (?, ?, ?, ?, ?)`
	}
	if _, err := tx.ExecContext(ctx, insert,
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano), m.Checksum, appliedBy,
	); err != nil {
		return fmt.Errorf("Apply: record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Apply: commit: %w", err)
	}
	return nil
}

var _ Applier = (*SQLApplier)(nil)
