package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

// Store is an in-memory ledger and customer store.
// It is safe for concurrent use. Data is lost on restart.
type Store struct {
	mu        sync.RWMutex
	txs       []domain.Transaction
	byID      map[string]int
	customers []domain.Customer
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]int),
	}
}

// Insert implements ledger.Store.
func (s *Store) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if tx.ID == "" {
		return domain.Transaction{}, fmt.Errorf("transaction ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[tx.ID]; exists {
		return domain.Transaction{}, fmt.Errorf("duplicate transaction ID: %s", tx.ID)
	}
	s.byID[tx.ID] = len(s.txs)
	s.txs = append(s.txs, tx)

	return tx, nil
}

// Select implements ledger.Store. Records come back in insertion order unless
// q asks for another ordering.
func (s *Store) Select(ctx context.Context, q ledger.Query) ([]domain.Transaction, error) {
	s.mu.RLock()
	result := ledger.Select(s.txs, q.Filter)
	s.mu.RUnlock()

	switch q.OrderBy {
	case ledger.OrderByCreatedAt:
		sort.SliceStable(result, func(i, j int) bool {
			if q.Descending {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	case ledger.OrderByDate:
		sort.SliceStable(result, func(i, j int) bool {
			if q.Descending {
				return result[i].Date.After(result[j].Date)
			}
			return result[i].Date.Before(result[j].Date)
		})
	}

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}
	return result, nil
}

// DeleteByID implements ledger.Store.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.byID[id]
	if !exists {
		return ledger.ErrNotFound
	}

	s.txs = append(s.txs[:idx], s.txs[idx+1:]...)
	delete(s.byID, id)
	for i := idx; i < len(s.txs); i++ {
		s.byID[s.txs[i].ID] = i
	}
	return nil
}

// InsertCustomer implements customers.Store.
func (s *Store) InsertCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if c.ID == "" {
		return domain.Customer{}, fmt.Errorf("customer ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers = append(s.customers, c)
	return c, nil
}

// ListCustomers implements customers.Store.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	result := make([]domain.Customer, len(s.customers))
	copy(result, s.customers)
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

// SearchCustomers implements customers.Store.
func (s *Store) SearchCustomers(ctx context.Context, term string) ([]domain.Customer, error) {
	all, err := s.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Customer, 0)
	for _, c := range all {
		if customers.Matches(c, term) {
			result = append(result, c)
		}
	}
	return result, nil
}

// Ensure Store implements both store interfaces.
var (
	_ ledger.Store    = (*Store)(nil)
	_ customers.Store = (*Store)(nil)
)
