package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
)

// Classification splits a transaction set into money in and money out.
type Classification struct {
	Credits []domain.Transaction
	Debits  []domain.Transaction
}

// Classify partitions txs by amount sign, keeping source order in both lists.
func Classify(txs []domain.Transaction) Classification {
	c := Classification{
		Credits: make([]domain.Transaction, 0),
		Debits:  make([]domain.Transaction, 0),
	}
	for _, tx := range txs {
		switch {
		case tx.IsCredit():
			c.Credits = append(c.Credits, tx)
		case tx.IsDebit():
			c.Debits = append(c.Debits, tx)
		}
	}
	return c
}

// DisplayAmount is the amount shown in a ledger column. Debits are shown as
// their magnitude since the column already carries the direction.
func DisplayAmount(tx domain.Transaction) decimal.Decimal {
	return tx.AbsAmount()
}

// DayView is the cash book page for one calendar date.
type DayView struct {
	Date        civil.Date
	Credits     []domain.Transaction
	Debits      []domain.Transaction
	CreditTotal decimal.Decimal
	// DebitTotal is the magnitude of money paid out.
	DebitTotal  decimal.Decimal
	Net         decimal.Decimal
}

// Day scopes txs to d and classifies the result.
func Day(txs []domain.Transaction, d civil.Date) DayView {
	scoped := OnDate(txs, d)
	c := Classify(scoped)
	return DayView{
		Date:        d,
		Credits:     c.Credits,
		Debits:      c.Debits,
		CreditTotal: Balance(c.Credits),
		DebitTotal:  Balance(c.Debits).Abs(),
		Net:         Balance(scoped),
	}
}
