package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/cashbook/internal/migrate"
)

// MigrationApplier records schema migrations in a schema_migrations table
// inside the ledger dataset.
type MigrationApplier struct {
	client  *bigquery.Client
	dataset Dataset
}

// NewMigrationApplier creates an applier using client.
func NewMigrationApplier(client *bigquery.Client, ds Dataset) *MigrationApplier {
	return &MigrationApplier{client: client, dataset: ds}
}

// EnsureTable creates the dataset and the schema_migrations table if they don't exist.
func (a *MigrationApplier) EnsureTable(ctx context.Context) error {
	dataset := a.client.DatasetInProject(a.dataset.ProjectID, a.dataset.DatasetID)
	if _, err := dataset.Metadata(ctx); err != nil {
		if err := dataset.Create(ctx, &bigquery.DatasetMetadata{}); err != nil && !strings.Contains(err.Error(), "Already Exists") {
			return fmt.Errorf("EnsureTable: creating dataset: %w", err)
		}
	}

	return a.run(ctx, `
		CREATE TABLE IF NOT EXISTS `+a.dataset.table("schema_migrations")+` (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, nil)
}

// Applied retrieves the list of already applied migrations
func (a *MigrationApplier) Applied(ctx context.Context) ([]migrate.AppliedMigration, error) {
	q := a.client.Query(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM ` + a.dataset.table("schema_migrations") + `
		ORDER BY version ASC
	`)
	it, err := q.Read(ctx)
	if err != nil {
		// If table doesn't exist yet, return empty list
		if strings.Contains(err.Error(), "Not found") {
			return []migrate.AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("Applied: reading applied migrations: %w", err)
	}

	var applied []migrate.AppliedMigration
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			AppliedAt time.Time           `bigquery:"applied_at"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Applied: iterating results: %w", err)
		}

		applied = append(applied, migrate.AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

// Apply executes a migration and then records it in schema_migrations.
// BigQuery DDL is not transactional, so a failure between the two steps
// leaves the migration applied but unrecorded; migrations use IF NOT EXISTS.
func (a *MigrationApplier) Apply(ctx context.Context, m migrate.Migration, appliedBy string) error {
	if err := a.run(ctx, m.SQL, nil); err != nil {
		return fmt.Errorf("Apply: executing: %w", err)
	}

	err := a.run(ctx, `
		INSERT INTO `+a.dataset.table("schema_migrations")+`
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	})
	if err != nil {
		return fmt.Errorf("Apply: recording: %w", err)
	}
	return nil
}

func (a *MigrationApplier) run(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := a.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}

var _ migrate.Applier = (*MigrationApplier)(nil)
