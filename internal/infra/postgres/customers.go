package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dvloznov/cashbook/internal/domain"
)

// InsertCustomer implements customers.Store.
func (r *LedgerRepository) InsertCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO "CustomersData" ("id", "name", "email", "phone", "address", "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address), c.CreatedAt)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	return c, nil
}

// ListCustomers implements customers.Store.
func (r *LedgerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return r.queryCustomers(ctx, `
		SELECT "id", "name", "email", "phone", "address", "createdAt"
		FROM "CustomersData"
		ORDER BY lower("name") ASC
	`)
}

// SearchCustomers implements customers.Store.
func (r *LedgerRepository) SearchCustomers(ctx context.Context, term string) ([]domain.Customer, error) {
	return r.queryCustomers(ctx, `
		SELECT "id", "name", "email", "phone", "address", "createdAt"
		FROM "CustomersData"
		WHERE "name" ILIKE $1 OR "email" ILIKE $1 OR "phone" ILIKE $1
		ORDER BY lower("name") ASC
	`, "%"+escapeLike(strings.TrimSpace(term))+"%")
}

func (r *LedgerRepository) queryCustomers(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Customer, 0)
	for rows.Next() {
		var (
			c                     domain.Customer
			email, phone, address sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &phone, &address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c.Email, c.Phone, c.Address = email.String, phone.String, address.String
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return result, nil
}
