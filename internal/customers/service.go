package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

var (
	// ErrNameRequired is returned when a customer is added without a name.
	ErrNameRequired = errors.New("Buyer name is required")
	// ErrEmptySearch is returned when a search term is blank.
	ErrEmptySearch = errors.New("Please enter a search term")
)

// Store persists the customer directory.
type Store interface {
	InsertCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	// ListCustomers returns all customers ordered by name.
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	// SearchCustomers matches term against name, email and phone, ignoring case.
	SearchCustomers(ctx context.Context, term string) ([]domain.Customer, error)
}

// Service manages the customer directory and links customers to their
// ledger transactions by name.
type Service struct {
	store  Store
	ledger ledger.Store
	now    func() time.Time
}

// NewService creates a Service. txs may be nil if transaction lookup is not needed.
func NewService(store Store, txs ledger.Store) *Service {
	return &Service{store: store, ledger: txs, now: time.Now}
}

// Add validates and stores a new customer.
func (s *Service) Add(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Customer{}, ErrNameRequired
	}
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()

	stored, err := s.store.InsertCustomer(ctx, c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("Add: inserting customer: %w", err)
	}
	return stored, nil
}

// List returns every customer ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	cs, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return cs, nil
}

// Search finds customers whose name, email or phone contains term.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptySearch
	}
	cs, err := s.store.SearchCustomers(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return cs, nil
}

// Transactions lists the ledger transactions recorded against a customer name.
func (s *Service) Transactions(ctx context.Context, name string) ([]domain.Transaction, error) {
	if s.ledger == nil {
		return nil, fmt.Errorf("Transactions: no ledger store configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	txs, err := s.ledger.Select(ctx, ledger.Query{
		Filter:  ledger.Filter{Party: name},
		OrderBy: ledger.OrderByDate,
	})
	if err != nil {
		return nil, &ledger.StoreError{Op: "select", Err: err}
	}
	return txs, nil
}

// Matches reports whether c's name, email or phone contains term, ignoring case.
func Matches(c domain.Customer, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for _, field := range []string{c.Name, c.Email, c.Phone} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
