package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

const (
	transactionsTable = "Transactions"
	customersTable    = "CustomersData"
)

// Dataset locates the ledger tables inside a BigQuery project.
type Dataset struct {
	ProjectID string
	DatasetID string
}

// table returns the fully qualified, backquoted name of a table.
func (d Dataset) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, name)
}

// BigQueryLedgerRepository implements ledger.Store and customers.Store on
// BigQuery. It holds a shared client to avoid creating a new connection for
// each operation.
type BigQueryLedgerRepository struct {
	client  *bigquery.Client
	dataset Dataset
}

// NewBigQueryLedgerRepository creates a repository with its own client.
func NewBigQueryLedgerRepository(ctx context.Context, ds Dataset, opts ...option.ClientOption) (*BigQueryLedgerRepository, error) {
	if ds.ProjectID == "" || ds.DatasetID == "" {
		return nil, fmt.Errorf("NewBigQueryLedgerRepository: project and dataset are required")
	}
	client, err := bigquery.NewClient(ctx, ds.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedgerRepository: creating client: %w", err)
	}
	return &BigQueryLedgerRepository{
		client:  client,
		dataset: ds,
	}, nil
}

// Client exposes the underlying client for schema migrations.
func (r *BigQueryLedgerRepository) Client() *bigquery.Client {
	return r.client
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *BigQueryLedgerRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Insert delegates to InsertTransactionWithClient with the shared client.
func (r *BigQueryLedgerRepository) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if err := InsertTransactionWithClient(ctx, r.client, r.dataset, tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Select delegates to SelectTransactionsWithClient with the shared client.
func (r *BigQueryLedgerRepository) Select(ctx context.Context, q ledger.Query) ([]domain.Transaction, error) {
	return SelectTransactionsWithClient(ctx, r.client, r.dataset, q)
}

// DeleteByID delegates to DeleteTransactionWithClient with the shared client.
func (r *BigQueryLedgerRepository) DeleteByID(ctx context.Context, id string) error {
	return DeleteTransactionWithClient(ctx, r.client, r.dataset, id)
}

// InsertCustomer delegates to InsertCustomerWithClient with the shared client.
func (r *BigQueryLedgerRepository) InsertCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if err := InsertCustomerWithClient(ctx, r.client, r.dataset, c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

// ListCustomers delegates to ListCustomersWithClient with the shared client.
func (r *BigQueryLedgerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return ListCustomersWithClient(ctx, r.client, r.dataset, "")
}

// SearchCustomers delegates to ListCustomersWithClient with a search term.
func (r *BigQueryLedgerRepository) SearchCustomers(ctx context.Context, term string) ([]domain.Customer, error) {
	return ListCustomersWithClient(ctx, r.client, r.dataset, term)
}

var (
	_ ledger.Store    = (*BigQueryLedgerRepository)(nil)
	_ customers.Store = (*BigQueryLedgerRepository)(nil)
)
