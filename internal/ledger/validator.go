package ledger

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
)

// Draft is a general transaction as entered by the user. Every field is raw
// input; Validate turns it into a Command.
type Draft struct {
	Type         string `json:"transactionType"`
	PartyName    string `json:"name"`
	SellerName   string `json:"sellerName"`
	ReceiverBank string `json:"receiverBank"`
	Amount       string `json:"amount"`
	Date         string `json:"transactionDate"`
	Description  string `json:"description"`
}

// CashEntry is an ad-hoc cash movement with an explicit IN/OUT flag.
type CashEntry struct {
	PartyName   string `json:"name"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"transactionDate"`
}

// Command is a validated, normalized draft ready for the Recorder.
// Amount is the positive magnitude entered by the user.
type Command struct {
	Type         domain.TransactionType
	PartyName    string
	SellerName   string
	ReceiverBank string
	Amount       decimal.Decimal
	Date         civil.Date
	Description  string
	Direction    domain.Direction
}

// Validate checks a general transaction draft. Checks run in a fixed order and
// the first failure is returned.
func Validate(d Draft) (Command, error) {
	t, ok := domain.ParseTransactionType(d.Type)
	if !ok {
		return Command{}, &MissingTypeError{Input: d.Type}
	}

	cmd := Command{
		Type:        t,
		PartyName:   strings.TrimSpace(d.PartyName),
		Description: strings.TrimSpace(d.Description),
	}
	if cmd.PartyName == "" {
		return Command{}, &MissingPartyError{}
	}

	switch t {
	case domain.TransactionTypeContra:
		cmd.SellerName = strings.TrimSpace(d.SellerName)
		if cmd.SellerName == "" {
			return Command{}, &MissingSellerError{}
		}
	case domain.TransactionTypeBank:
		cmd.ReceiverBank = strings.TrimSpace(d.ReceiverBank)
		if cmd.ReceiverBank == "" {
			return Command{}, &MissingBankError{}
		}
	}

	amount, err := parseAmount(d.Amount)
	if err != nil {
		return Command{}, err
	}
	cmd.Amount = amount

	date, err := parseDate(d.Date)
	if err != nil {
		return Command{}, err
	}
	cmd.Date = date

	return cmd, nil
}

// ValidateCashEntry checks a cash entry: party, direction, description, amount, date.
func ValidateCashEntry(e CashEntry) (Command, error) {
	cmd := Command{
		Type:        domain.TransactionTypeCash,
		PartyName:   strings.TrimSpace(e.PartyName),
		Description: strings.TrimSpace(e.Description),
	}
	if cmd.PartyName == "" {
		return Command{}, &MissingPartyError{}
	}

	dir, ok := domain.ParseDirection(e.Direction)
	if !ok {
		return Command{}, &MissingDirectionError{Input: e.Direction}
	}
	cmd.Direction = dir

	if cmd.Description == "" {
		return Command{}, &MissingDescriptionError{}
	}

	amount, err := parseAmount(e.Amount)
	if err != nil {
		return Command{}, err
	}
	cmd.Amount = amount

	date, err := parseDate(e.Date)
	if err != nil {
		return Command{}, err
	}
	cmd.Date = date

	return cmd, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &InvalidAmountError{Input: s}
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, &InvalidAmountError{Input: s}
	}
	// Whole cents only.
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, &InvalidAmountError{Input: s}
	}
	return amount, nil
}

func parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, &MissingDateError{}
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, &MissingDateError{Input: s}
	}
	return d, nil
}
