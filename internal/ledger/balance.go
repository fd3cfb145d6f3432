package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
)

// Balance returns the exact signed sum of amounts. An empty set yields zero.
// Round only for display, with FormatAmount.
func Balance(txs []domain.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// BalanceOf returns the balance over the transactions of a single type.
func BalanceOf(txs []domain.Transaction, t domain.TransactionType) decimal.Decimal {
	return Balance(Select(txs, Filter{Type: t}))
}

// FormatAmount renders an amount for display with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
