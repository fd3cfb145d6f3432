package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/logger"
)

// Recorder turns validated commands into stored transactions.
type Recorder struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Build produces the transaction a command would persist, without storing it.
// Cash entries are signed by direction; other types keep the entered amount.
func (r *Recorder) Build(cmd Command) domain.Transaction {
	amount := cmd.Amount.Abs()
	if cmd.Direction == domain.DirectionOut {
		amount = amount.Neg()
	}

	tx := domain.Transaction{
		ID:          r.newID(),
		Type:        cmd.Type,
		PartyName:   cmd.PartyName,
		Amount:      amount,
		Date:        cmd.Date,
		Description: cmd.Description,
		CreatedAt:   r.now().UTC(),
	}
	switch cmd.Type {
	case domain.TransactionTypeContra:
		tx.SellerName = cmd.SellerName
	case domain.TransactionTypeBank:
		tx.ReceiverBank = cmd.ReceiverBank
	}
	return tx
}

// Record builds and stores a transaction. A store failure is returned as
// *StoreError and nothing is retried.
func (r *Recorder) Record(ctx context.Context, cmd Command) (domain.Transaction, error) {
	tx := r.Build(cmd)

	stored, err := r.store.Insert(ctx, tx)
	if err != nil {
		return domain.Transaction{}, &StoreError{Op: "insert", Err: err}
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("transaction_id", stored.ID).
		Str("type", string(stored.Type)).
		Str("amount", stored.Amount.StringFixed(2)).
		Msg("Transaction recorded")

	return stored, nil
}
