package ledger

import (
	"cloud.google.com/go/civil"

	"github.com/dvloznov/cashbook/internal/domain"
)

// OnDate returns the transactions whose calendar date equals d. The result is
// never nil and the input is not modified.
func OnDate(txs []domain.Transaction, d civil.Date) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for _, tx := range txs {
		if tx.Date == d {
			out = append(out, tx)
		}
	}
	return out
}

// Select applies f to an already loaded set, preserving order.
func Select(txs []domain.Transaction, f Filter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
