package domain

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType is the settlement channel of a ledger transaction.
type TransactionType string

const (
	TransactionTypeCash   TransactionType = "CASH"
	TransactionTypeBank   TransactionType = "BANK"
	TransactionTypeContra TransactionType = "CONTRA"
)

// TransactionTypes lists the known types in display order.
var TransactionTypes = []TransactionType{
	TransactionTypeCash,
	TransactionTypeBank,
	TransactionTypeContra,
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeCash, TransactionTypeBank, TransactionTypeContra:
		return true
	}
	return false
}

// ParseTransactionType normalizes user input ("cash", " BANK ") to a known type.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Direction is the IN/OUT flag chosen for cash entries.
type Direction string

const (
	DirectionIn  Direction = "CASH IN"
	DirectionOut Direction = "CASH OUT"
)

// ParseDirection accepts "CASH IN", "cash_out", "in", "OUT" and similar spellings.
func ParseDirection(s string) (Direction, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	v = strings.TrimSpace(strings.TrimPrefix(v, "CASH"))
	switch v {
	case "IN":
		return DirectionIn, true
	case "OUT":
		return DirectionOut, true
	}
	return "", false
}

// Transaction is a single recorded monetary movement. The sign of Amount encodes
// direction: positive is money received, negative is money paid out.
// Date is a calendar date and carries no time-of-day or zone.
type Transaction struct {
	ID           string          `json:"transactionId"`
	Type         TransactionType `json:"transactionType"`
	PartyName    string          `json:"name"`
	SellerName   string          `json:"sellerName,omitempty"`
	ReceiverBank string          `json:"receiverBank,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Date         civil.Date      `json:"transactionDate"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// IsCredit reports whether the transaction brought money in.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// IsDebit reports whether the transaction paid money out.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// AbsAmount returns the transacted magnitude without its sign.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}
