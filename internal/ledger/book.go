package ledger

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/logger"
)

// DefaultRecentLimit is how many cash transactions Recent returns.
const DefaultRecentLimit = 10

// FetchStatus describes the outcome of the most recent load.
type FetchStatus string

const (
	FetchNever  FetchStatus = "never"
	FetchOK     FetchStatus = "ok"
	FetchFailed FetchStatus = "failed"
)

// Status is a snapshot of the book's load state.
type Status struct {
	Fetch    FetchStatus
	Err      error
	LoadedAt time.Time
	// Stale is set after a mutation until a reload started after it succeeds.
	Stale    bool
	Count    int
}

// Book holds the currently loaded transaction set and the commands that change
// it. Derived views are always computed from the loaded set; nothing is cached.
type Book struct {
	store       Store
	recorder    *Recorder
	deleter     *Deleter
	scope       Filter
	recentLimit int
	now         func() time.Time

	mu       sync.RWMutex
	txs      []domain.Transaction
	fetch    FetchStatus
	lastErr  error
	loadedAt time.Time
	stale    bool

	// reloadSeq numbers Reload calls; appliedSeq is the newest one applied.
	// mutations counts successful writes so a reload that started before a
	// write cannot clear stale.
	reloadSeq  uint64
	appliedSeq uint64
	mutations  uint64
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithScope restricts what Reload loads, e.g. only CASH transactions.
func WithScope(f Filter) BookOption {
	return func(b *Book) { b.scope = f }
}

// WithRecentLimit overrides DefaultRecentLimit.
func WithRecentLimit(n int) BookOption {
	return func(b *Book) {
		if n > 0 {
			b.recentLimit = n
		}
	}
}

// WithClock sets the time source used for ids' timestamps and load times.
func WithClock(now func() time.Time) BookOption {
	return func(b *Book) { b.now = now }
}

// NewBook creates an empty Book over store. Call Reload to load it.
func NewBook(store Store, opts ...BookOption) *Book {
	b := &Book{
		store:       store,
		recentLimit: DefaultRecentLimit,
		now:         time.Now,
		fetch:       FetchNever,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.recorder = NewRecorder(store)
	b.recorder.now = b.now
	b.deleter = NewDeleter(store, b.markStale)
	return b
}

// Reload fetches the scoped transaction set from the store. On failure the
// previously loaded set is kept and the error is returned as *StoreError.
// A result that lands after a newer reload was applied is discarded.
func (b *Book) Reload(ctx context.Context) error {
	b.mu.Lock()
	b.reloadSeq++
	seq := b.reloadSeq
	mutations := b.mutations
	b.mu.Unlock()

	txs, err := b.store.Select(ctx, Query{Filter: b.scope})

	b.mu.Lock()
	defer b.mu.Unlock()

	log := logger.FromContext(ctx)
	if err != nil {
		if seq > b.appliedSeq {
			b.fetch = FetchFailed
			b.lastErr = err
		}
		log.Warn().Err(err).Int("kept", len(b.txs)).Msg("Ledger reload failed, keeping previous view")
		return &StoreError{Op: "select", Err: err}
	}

	if seq < b.appliedSeq {
		log.Debug().Uint64("seq", seq).Uint64("applied", b.appliedSeq).Msg("Discarding superseded ledger reload")
		return nil
	}

	b.txs = txs
	b.appliedSeq = seq
	b.fetch = FetchOK
	b.lastErr = nil
	b.loadedAt = b.now()
	b.stale = b.mutations != mutations
	return nil
}

// Record validates and stores a general transaction, then reloads.
func (b *Book) Record(ctx context.Context, d Draft) (domain.Transaction, error) {
	cmd, err := Validate(d)
	if err != nil {
		return domain.Transaction{}, err
	}
	return b.commit(ctx, cmd)
}

// RecordCash validates and stores a cash entry, then reloads.
func (b *Book) RecordCash(ctx context.Context, e CashEntry) (domain.Transaction, error) {
	cmd, err := ValidateCashEntry(e)
	if err != nil {
		return domain.Transaction{}, err
	}
	return b.commit(ctx, cmd)
}

func (b *Book) commit(ctx context.Context, cmd Command) (domain.Transaction, error) {
	tx, err := b.recorder.Record(ctx, cmd)
	if err != nil {
		return domain.Transaction{}, err
	}
	b.markStale(ctx)
	// The record is stored; a failed refresh only leaves the view stale.
	_ = b.Reload(ctx)
	return tx, nil
}

// Delete removes a transaction and reloads on success. On failure the loaded
// set is untouched.
func (b *Book) Delete(ctx context.Context, id string) error {
	if err := b.deleter.Delete(ctx, id); err != nil {
		return err
	}
	_ = b.Reload(ctx)
	return nil
}

func (b *Book) markStale(context.Context) {
	b.mu.Lock()
	b.mutations++
	b.stale = true
	b.mu.Unlock()
}

// Transactions returns a copy of the loaded set.
func (b *Book) Transactions() []domain.Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Transaction, len(b.txs))
	copy(out, b.txs)
	return out
}

// Status reports the result of the last load.
func (b *Book) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Status{
		Fetch:    b.fetch,
		Err:      b.lastErr,
		LoadedAt: b.loadedAt,
		Stale:    b.stale,
		Count:    len(b.txs),
	}
}

// Balance is the balance over the whole loaded set.
func (b *Book) Balance() decimal.Decimal {
	return Balance(b.Transactions())
}

// TypeBalance is the balance over loaded transactions of one type.
func (b *Book) TypeBalance(t domain.TransactionType) decimal.Decimal {
	return BalanceOf(b.Transactions(), t)
}

// Day is the cash book view for one date over the loaded set.
func (b *Book) Day(d civil.Date) DayView {
	return Day(b.Transactions(), d)
}

// Recent fetches the latest cash transactions by creation time, newest first.
func (b *Book) Recent(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := b.store.Select(ctx, Query{
		Filter:     Filter{Type: domain.TransactionTypeCash},
		OrderBy:    OrderByCreatedAt,
		Descending: true,
		Limit:      b.recentLimit,
	})
	if err != nil {
		return nil, &StoreError{Op: "select", Err: err}
	}
	return txs, nil
}

// Search queries the store directly, bypassing the loaded set.
func (b *Book) Search(ctx context.Context, q Query) ([]domain.Transaction, error) {
	txs, err := b.store.Select(ctx, q)
	if err != nil {
		return nil, &StoreError{Op: "select", Err: err}
	}
	return txs, nil
}
