package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

const dateFormat = "2006-01-02"

// InsertTransactionWithClient writes a single transaction into the
// Transactions table using the provided BigQuery client. Uses DML INSERT so
// the row can be deleted right away; streamed rows reject DML until the
// streaming buffer flushes.
func InsertTransactionWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, tx domain.Transaction) error {
	sql, params := buildInsertQuery(ds, tx)

	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("InsertTransaction: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("InsertTransaction: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("InsertTransaction: job error: %w", err)
	}

	return nil
}

// buildInsertQuery renders the DML INSERT and its named parameters for tx.
func buildInsertQuery(ds Dataset, tx domain.Transaction) (string, []bigquery.QueryParameter) {
	row := NewTransactionRow(tx)

	sql := `
		INSERT INTO ` + ds.table(transactionsTable) + ` (
			transactionId, transactionType, name,
			sellerName, receiverBank, amount,
			transactionDate, description, createdAt
		)
		VALUES (
			@transaction_id, @transaction_type, @name,
			@seller_name, @receiver_bank, @amount,
			@transaction_date, @description, @created_at
		)
	`

	params := []bigquery.QueryParameter{
		{Name: "transaction_id", Value: row.TransactionID},
		{Name: "transaction_type", Value: row.TransactionType},
		{Name: "name", Value: row.Name},
		{Name: "seller_name", Value: row.SellerName},
		{Name: "receiver_bank", Value: row.ReceiverBank},
		{Name: "amount", Value: row.Amount},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: "description", Value: row.Description},
		{Name: "created_at", Value: row.CreatedAt},
	}
	return sql, params
}

// SelectTransactionsWithClient runs a filtered query over the Transactions
// table using the provided BigQuery client.
func SelectTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, lq ledger.Query) ([]domain.Transaction, error) {
	sql, params := buildSelectQuery(ds, lq)

	q := client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("SelectTransactions: query read: %w", err)
	}

	txs := make([]domain.Transaction, 0)
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("SelectTransactions: iter next: %w", err)
		}
		tx, err := r.Transaction()
		if err != nil {
			return nil, fmt.Errorf("SelectTransactions: %w", err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// buildSelectQuery renders the SQL and named parameters for a ledger query.
func buildSelectQuery(ds Dataset, lq ledger.Query) (string, []bigquery.QueryParameter) {
	var (
		where  []string
		params []bigquery.QueryParameter
		f      = lq.Filter
	)

	if f.Type != "" {
		where = append(where, "transactionType = @transaction_type")
		params = append(params, bigquery.QueryParameter{Name: "transaction_type", Value: string(f.Type)})
	}
	if f.Date != nil {
		where = append(where, "transactionDate = @transaction_date")
		params = append(params, bigquery.QueryParameter{Name: "transaction_date", Value: *f.Date})
	}
	if f.Party != "" {
		where = append(where, "LOWER(TRIM(name)) = LOWER(@party)")
		params = append(params, bigquery.QueryParameter{Name: "party", Value: strings.TrimSpace(f.Party)})
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		where = append(where, "(CONTAINS_SUBSTR(name, @text) OR CONTAINS_SUBSTR(IFNULL(description, ''), @text))")
		params = append(params, bigquery.QueryParameter{Name: "text", Value: text})
	}

	var b strings.Builder
	b.WriteString(`
		SELECT
			transactionId,
			transactionType,
			name,
			sellerName,
			receiverBank,
			amount,
			transactionDate,
			description,
			createdAt
		FROM `)
	b.WriteString(ds.table(transactionsTable))
	if len(where) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(where, "\n\t\t  AND "))
	}

	dir := "ASC"
	if lq.Descending {
		dir = "DESC"
	}
	switch lq.OrderBy {
	case ledger.OrderByDate:
		fmt.Fprintf(&b, "\n\t\tORDER BY transactionDate %s, createdAt %s", dir, dir)
	default:
		fmt.Fprintf(&b, "\n\t\tORDER BY createdAt %s", dir)
	}

	if lq.Limit > 0 {
		b.WriteString("\n\t\tLIMIT @limit")
		params = append(params, bigquery.QueryParameter{Name: "limit", Value: lq.Limit})
	}

	return b.String(), params
}

// DeleteTransactionWithClient removes one transaction with a DML statement.
// It returns ledger.ErrNotFound when no row was affected.
func DeleteTransactionWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, id string) error {
	q := client.Query(`
		DELETE FROM ` + ds.table(transactionsTable) + `
		WHERE transactionId = @transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("DeleteTransaction: job error: %w", err)
	}

	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok && stats.NumDMLAffectedRows == 0 {
		return ledger.ErrNotFound
	}

	return nil
}
