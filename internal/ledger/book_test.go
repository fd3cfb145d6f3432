package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/cashbook/internal/domain"
)

func TestBook_ReloadFailureKeepsView(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	loaded := []domain.Transaction{tx("a", "500", d), tx("b", "-200", d)}
	fail := false

	store := &mockStore{
		SelectFunc: func(ctx context.Context, q Query) ([]domain.Transaction, error) {
			if fail {
				return nil, errors.New("network unreachable")
			}
			return loaded, nil
		},
	}
	b := NewBook(store)

	if st := b.Status(); st.Fetch != FetchNever {
		t.Errorf("initial fetch status = %q, want %q", st.Fetch, FetchNever)
	}
	if err := b.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	fail = true
	err := b.Reload(context.Background())
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Reload() error = %v, want *StoreError", err)
	}

	if got := len(b.Transactions()); got != 2 {
		t.Errorf("len(Transactions) = %d after failed reload, want 2", got)
	}
	if got := FormatAmount(b.Balance()); got != "300.00" {
		t.Errorf("Balance() = %s, want 300.00", got)
	}
	if st := b.Status(); st.Fetch != FetchFailed || st.Err == nil {
		t.Errorf("Status() = %+v, want failed with error", st)
	}
}

func TestBook_ValidationNeverReachesStore(t *testing.T) {
	store := &mockStore{}
	b := NewBook(store)

	_, err := b.Record(context.Background(), Draft{
		Type:      "CONTRA",
		PartyName: "Ravi",
		Amount:    "100",
		Date:      "2024-06-01",
	})
	var sellerErr *MissingSellerError
	if !errors.As(err, &sellerErr) {
		t.Fatalf("Record() error = %v, want *MissingSellerError", err)
	}

	_, err = b.Record(context.Background(), Draft{
		Type:      "BANK",
		PartyName: "Ravi",
		Amount:    "100",
		Date:      "2024-06-01",
	})
	var bankErr *MissingBankError
	if !errors.As(err, &bankErr) {
		t.Fatalf("Record() error = %v, want *MissingBankError", err)
	}

	if store.inserts != 0 {
		t.Errorf("store inserts = %d, want 0", store.inserts)
	}
}

func TestBook_DeleteFailureLeavesViewUnchanged(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	selects := 0
	store := &mockStore{
		SelectFunc: func(ctx context.Context, q Query) ([]domain.Transaction, error) {
			selects++
			return []domain.Transaction{tx("a", "500", d)}, nil
		},
		DeleteByIDFunc: func(ctx context.Context, id string) error { return ErrNotFound },
	}
	b := NewBook(store)
	if err := b.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	err := b.Delete(context.Background(), "a")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	if selects != 1 {
		t.Errorf("selects = %d, want 1 (no reload after failed delete)", selects)
	}
	if got := len(b.Transactions()); got != 1 {
		t.Errorf("len(Transactions) = %d, want 1", got)
	}
	if b.Status().Stale {
		t.Error("book marked stale after failed delete")
	}
}

func TestBook_Recent(t *testing.T) {
	var got Query
	store := &mockStore{
		SelectFunc: func(ctx context.Context, q Query) ([]domain.Transaction, error) {
			got = q
			return nil, nil
		},
	}

	if _, err := NewBook(store, WithRecentLimit(5)).Recent(context.Background()); err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if got.Filter.Type != domain.TransactionTypeCash {
		t.Errorf("filter type = %q, want CASH", got.Filter.Type)
	}
	if got.OrderBy != OrderByCreatedAt || !got.Descending {
		t.Errorf("order = %q desc=%v, want createdAt desc", got.OrderBy, got.Descending)
	}
	if got.Limit != 5 {
		t.Errorf("limit = %d, want 5", got.Limit)
	}
}

// gatedStore holds the second Select call open until release is closed, so a
// reload can be overtaken by a delete.
type gatedStore struct {
	mockStore

	mu      sync.Mutex
	data    []domain.Transaction
	calls   int
	failAt  int
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(data ...domain.Transaction) *gatedStore {
	g := &gatedStore{
		data:    data,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	g.SelectFunc = func(ctx context.Context, q Query) ([]domain.Transaction, error) {
		g.mu.Lock()
		g.calls++
		n := g.calls
		snapshot := append([]domain.Transaction(nil), g.data...)
		g.mu.Unlock()

		if n == g.failAt {
			return nil, errors.New("connection reset")
		}
		if n == 2 {
			close(g.entered)
			<-g.release
		}
		return snapshot, nil
	}
	g.DeleteByIDFunc = func(ctx context.Context, id string) error {
		g.mu.Lock()
		defer g.mu.Unlock()
		kept := g.data[:0]
		for _, t := range g.data {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		g.data = kept
		return nil
	}
	return g
}

func TestBook_ReloadOvertakenByDelete(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	tests := []struct {
		name        string
		failAt      int
		wantBalance string
		wantStale   bool
	}{
		{
			name:        "newer reload wins",
			wantBalance: "0.00",
			wantStale:   false,
		},
		{
			name:        "older reload after failed refresh stays stale",
			failAt:      3,
			wantBalance: "500.00",
			wantStale:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newGatedStore(tx("a", "500", d))
			store.failAt = tt.failAt
			b := NewBook(store)
			ctx := context.Background()

			if err := b.Reload(ctx); err != nil {
				t.Fatalf("Reload() error = %v", err)
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = b.Reload(ctx)
			}()
			<-store.entered

			if err := b.Delete(ctx, "a"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			close(store.release)
			<-done

			if got := FormatAmount(b.Balance()); got != tt.wantBalance {
				t.Errorf("Balance() = %s, want %s", got, tt.wantBalance)
			}
			if st := b.Status(); st.Stale != tt.wantStale {
				t.Errorf("Status().Stale = %v, want %v", st.Stale, tt.wantStale)
			}
		})
	}
}
