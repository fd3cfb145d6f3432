package ledger

import (
	"context"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/cashbook/internal/domain"
)

// Store is the persistence collaborator of the ledger. Implementations live
// under internal/infra and must either persist a record in full or not at all.
type Store interface {
	// Insert persists a fully built transaction and returns the stored record.
	Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)

	// Select returns the transactions matching q.
	Select(ctx context.Context, q Query) ([]domain.Transaction, error)

	// DeleteByID removes a transaction. It returns ErrNotFound if nothing matched.
	DeleteByID(ctx context.Context, id string) error
}

// Filter constrains a Select. Zero values mean "any".
type Filter struct {
	Type domain.TransactionType
	Date *civil.Date
	// Text matches case-insensitively against party name and description.
	Text string
	// Party matches the party name exactly, ignoring case.
	Party string
}

// OrderField names a sortable column.
type OrderField string

const (
	OrderByCreatedAt OrderField = "createdAt"
	OrderByDate      OrderField = "transactionDate"
)

// Query bundles the filter with optional ordering and limit. With no OrderBy
// the store returns records in creation order.
type Query struct {
	Filter     Filter
	OrderBy    OrderField
	Descending bool
	Limit      int
}

// Matches reports whether tx satisfies every constraint in f.
func (f Filter) Matches(tx domain.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Date != nil && tx.Date != *f.Date {
		return false
	}
	if f.Party != "" && !strings.EqualFold(strings.TrimSpace(tx.PartyName), strings.TrimSpace(f.Party)) {
		return false
	}
	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		if !strings.Contains(strings.ToLower(tx.PartyName), text) &&
			!strings.Contains(strings.ToLower(tx.Description), text) {
			return false
		}
	}
	return true
}

// OnDate returns a copy of f constrained to a single calendar date.
func (f Filter) OnDate(d civil.Date) Filter {
	f.Date = &d
	return f
}
