package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/dvloznov/cashbook/internal/logger"
)

var errMissingID = errors.New("no transaction ID provided")

// Deleter removes transactions by id and notifies subscribers that views
// derived from the previous load are stale.
type Deleter struct {
	store   Store
	onStale []func(ctx context.Context)
}

// NewDeleter creates a Deleter. Each onStale callback runs after a confirmed delete.
func NewDeleter(store Store, onStale ...func(ctx context.Context)) *Deleter {
	return &Deleter{store: store, onStale: onStale}
}

// Delete asks the store to remove id. Failures are returned as *DeleteError and
// no callback runs, so the caller's view stays as it was.
func (d *Deleter) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &DeleteError{Err: errMissingID}
	}

	if err := d.store.DeleteByID(ctx, id); err != nil {
		return &DeleteError{ID: id, Err: err}
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("transaction_id", id).Msg("Transaction deleted")

	for _, fn := range d.onStale {
		fn(ctx)
	}
	return nil
}
