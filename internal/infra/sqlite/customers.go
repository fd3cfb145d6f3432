package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/cashbook/internal/domain"
)

// InsertCustomer implements customers.Store.
func (r *LedgerRepository) InsertCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	_, err := r.conn.db.ExecContext(ctx, `
		INSERT INTO CustomersData (id, name, email, phone, address, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address),
		c.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

// ListCustomers implements customers.Store.
func (r *LedgerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return r.queryCustomers(ctx, `
		SELECT id, name, email, phone, address, createdAt
		FROM CustomersData
		ORDER BY name COLLATE NOCASE ASC
	`)
}

// SearchCustomers implements customers.Store.
func (r *LedgerRepository) SearchCustomers(ctx context.Context, term string) ([]domain.Customer, error) {
	p := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	return r.queryCustomers(ctx, `
		SELECT id, name, email, phone, address, createdAt
		FROM CustomersData
		WHERE name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\'
		ORDER BY name COLLATE NOCASE ASC
	`, p, p, p)
}

func (r *LedgerRepository) queryCustomers(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.conn.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Customer, 0)
	for rows.Next() {
		var (
			c                     domain.Customer
			email, phone, address sql.NullString
			createdAt             string
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &phone, &address, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("createdAt %q: %w", createdAt, err)
		}
		c.Email, c.Phone, c.Address = email.String, phone.String, address.String
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return result, nil
}
