package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"

	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

const transactionColumns = `"transactionId", "transactionType", "name", "sellerName", "receiverBank",
		       "amount", "transactionDate", "description", "createdAt"`

// LedgerRepository implements ledger.Store and customers.Store on Postgres.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a repository over db.
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Insert implements ledger.Store.
func (r *LedgerRepository) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	query := `
		INSERT INTO "Transactions" (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns

	stored, err := scanTransaction(r.db.QueryRowContext(
		ctx, query,
		tx.ID, string(tx.Type), tx.PartyName,
		nullString(tx.SellerName), nullString(tx.ReceiverBank),
		tx.Amount, tx.Date.String(), nullString(tx.Description), tx.CreatedAt,
	))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return stored, nil
}

// Select implements ledger.Store.
func (r *LedgerRepository) Select(ctx context.Context, q ledger.Query) ([]domain.Transaction, error) {
	query, args := buildSelectQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

// DeleteByID implements ledger.Store.
func (r *LedgerRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM "Transactions" WHERE "transactionId" = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return ledger.ErrNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// invalid_text_representation, raised when an id cannot be cast to a UUID
// column on schemas created before transaction ids became TEXT.
const invalidTextRepresentation pq.ErrorCode = "22P02"

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// buildSelectQuery renders SQL with $N placeholders for a ledger query.
func buildSelectQuery(q ledger.Query) (string, []any) {
	var (
		where []string
		args  []any
		f     = q.Filter
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, `"transactionType" = `+arg(string(f.Type)))
	}
	if f.Date != nil {
		where = append(where, `"transactionDate" = `+arg(f.Date.String()))
	}
	if f.Party != "" {
		where = append(where, `lower(trim("name")) = lower(`+arg(strings.TrimSpace(f.Party))+`)`)
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		p := arg("%" + escapeLike(text) + "%")
		where = append(where, `("name" ILIKE `+p+` OR coalesce("description", '') ILIKE `+p+`)`)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM "Transactions"`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	if q.OrderBy == ledger.OrderByDate {
		fmt.Fprintf(&b, ` ORDER BY "transactionDate" %s, "createdAt" %s`, dir, dir)
	} else {
		fmt.Fprintf(&b, ` ORDER BY "createdAt" %s`, dir)
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT " + arg(q.Limit))
	}
	return b.String(), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (domain.Transaction, error) {
	var (
		tx                 domain.Transaction
		txType             string
		seller, bank, desc sql.NullString
		date               time.Time
	)
	err := s.Scan(
		&tx.ID, &txType, &tx.PartyName, &seller, &bank,
		&tx.Amount, &date, &desc, &tx.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx.Type = domain.TransactionType(txType)
	tx.SellerName = seller.String
	tx.ReceiverBank = bank.String
	tx.Description = desc.String
	// DATE columns arrive as midnight UTC; take the calendar fields as-is.
	tx.Date = civil.Date{Year: date.Year(), Month: date.Month(), Day: date.Day()}
	return tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var (
	_ ledger.Store    = (*LedgerRepository)(nil)
	_ customers.Store = (*LedgerRepository)(nil)
)
