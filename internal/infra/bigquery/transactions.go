package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
)

// TransactionRow is a row of the Transactions table. Column names are the
// ledger's wire field names.
type TransactionRow struct {
	TransactionID   string `bigquery:"transactionId"`   // REQUIRED
	TransactionType string `bigquery:"transactionType"` // REQUIRED

	Name         string              `bigquery:"name"`         // REQUIRED
	SellerName   bigquery.NullString `bigquery:"sellerName"`   // NULLABLE, CONTRA only
	ReceiverBank bigquery.NullString `bigquery:"receiverBank"` // NULLABLE, BANK only

	Amount          *big.Rat   `bigquery:"amount"`          // REQUIRED NUMERIC
	TransactionDate civil.Date `bigquery:"transactionDate"` // REQUIRED DATE

	Description bigquery.NullString `bigquery:"description"` // NULLABLE
	CreatedAt   time.Time           `bigquery:"createdAt"`   // REQUIRED TIMESTAMP
}

// NewTransactionRow maps a domain transaction onto the table schema.
func NewTransactionRow(tx domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		TransactionType: string(tx.Type),
		Name:            tx.PartyName,
		SellerName:      nullString(tx.SellerName),
		ReceiverBank:    nullString(tx.ReceiverBank),
		Amount:          tx.Amount.Rat(),
		TransactionDate: tx.Date,
		Description:     nullString(tx.Description),
		CreatedAt:       tx.CreatedAt,
	}
}

// Transaction converts the row back into a domain transaction.
func (r *TransactionRow) Transaction() (domain.Transaction, error) {
	if r.Amount == nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: amount is NULL", r.TransactionID)
	}
	// NUMERIC carries at most nine fractional digits.
	amount, err := decimal.NewFromString(r.Amount.FloatString(9))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: amount: %w", r.TransactionID, err)
	}
	return domain.Transaction{
		ID:           r.TransactionID,
		Type:         domain.TransactionType(r.TransactionType),
		PartyName:    r.Name,
		SellerName:   r.SellerName.StringVal,
		ReceiverBank: r.ReceiverBank.StringVal,
		Amount:       amount,
		Date:         r.TransactionDate,
		Description:  r.Description.StringVal,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
