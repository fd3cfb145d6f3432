package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

// timeLayout is fixed-width so createdAt sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const transactionColumns = `transactionId, transactionType, name, sellerName, receiverBank,
		amount, transactionDate, description, createdAt`

// LedgerRepository implements ledger.Store and customers.Store on SQLite.
type LedgerRepository struct {
	conn *Connection
}

// NewLedgerRepository creates a repository over conn.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

// Insert implements ledger.Store.
func (r *LedgerRepository) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	_, err := r.conn.db.ExecContext(ctx, `
		INSERT INTO Transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID, string(tx.Type), tx.PartyName,
		nullString(tx.SellerName), nullString(tx.ReceiverBank),
		tx.Amount.String(), tx.Date.String(), nullString(tx.Description),
		tx.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	tx.CreatedAt = tx.CreatedAt.UTC()
	return tx, nil
}

// Select implements ledger.Store.
func (r *LedgerRepository) Select(ctx context.Context, q ledger.Query) ([]domain.Transaction, error) {
	query, args := buildSelectQuery(q)

	rows, err := r.conn.db.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

// DeleteByID implements ledger.Store.
func (r *LedgerRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.conn.db.ExecContext(ctx, `DELETE FROM Transactions WHERE transactionId = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func buildSelectQuery(q ledger.Query) (string, []any) {
	var (
		where []string
		args  []any
		f     = q.Filter
	)

	if f.Type != "" {
		where = append(where, "transactionType = ?")
		args = append(args, string(f.Type))
	}
	if f.Date != nil {
		where = append(where, "transactionDate = ?")
		args = append(args, f.Date.String())
	}
	if f.Party != "" {
		where = append(where, "lower(trim(name)) = lower(?)")
		args = append(args, strings.TrimSpace(f.Party))
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		p := "%" + escapeLike(text) + "%"
		where = append(where, `(name LIKE ? ESCAPE '\' OR coalesce(description, '') LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}

	var b strings.Builder
	b.WriteString("SELECT " + transactionColumns + " FROM Transactions")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	if q.OrderBy == ledger.OrderByDate {
		fmt.Fprintf(&b, " ORDER BY transactionDate %s, createdAt %s, rowid %s", dir, dir, dir)
	} else {
		fmt.Fprintf(&b, " ORDER BY createdAt %s, rowid %s", dir, dir)
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (domain.Transaction, error) {
	var (
		tx                 domain.Transaction
		txType, amount     string
		date, createdAt    string
		seller, bank, desc sql.NullString
	)
	if err := s.Scan(
		&tx.ID, &txType, &tx.PartyName, &seller, &bank,
		&amount, &date, &desc, &createdAt,
	); err != nil {
		return domain.Transaction{}, err
	}

	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return domain.Transaction{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	if tx.Date, err = civil.ParseDate(date); err != nil {
		return domain.Transaction{}, fmt.Errorf("transactionDate %q: %w", date, err)
	}
	if tx.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return domain.Transaction{}, fmt.Errorf("createdAt %q: %w", createdAt, err)
	}

	tx.Type = domain.TransactionType(txType)
	tx.SellerName = seller.String
	tx.ReceiverBank = bank.String
	tx.Description = desc.String
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
