package ledger

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
)

func validDraft() Draft {
	return Draft{
		Type:        "CASH",
		PartyName:   "Ravi",
		Amount:      "500",
		Date:        "2024-06-01",
		Description: "opening float",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing type",
			mutate:  func(d *Draft) { d.Type = "" },
			wantErr: &MissingTypeError{},
			wantMsg: "Please select a transaction type",
		},
		{
			name:    "unknown type",
			mutate:  func(d *Draft) { d.Type = "CHEQUE" },
			wantErr: &MissingTypeError{},
			wantMsg: "Please select a transaction type",
		},
		{
			name:    "blank party",
			mutate:  func(d *Draft) { d.PartyName = "   " },
			wantErr: &MissingPartyError{},
			wantMsg: "Customer name is required",
		},
		{
			name:    "contra without seller",
			mutate:  func(d *Draft) { d.Type = "CONTRA"; d.SellerName = "" },
			wantErr: &MissingSellerError{},
			wantMsg: "Seller name is required for CONTRA transactions",
		},
		{
			name:    "bank without receiver",
			mutate:  func(d *Draft) { d.Type = "BANK"; d.ReceiverBank = " " },
			wantErr: &MissingBankError{},
			wantMsg: "Receiver bank is required for BANK transactions",
		},
		{
			name:    "non numeric amount",
			mutate:  func(d *Draft) { d.Amount = "five hundred" },
			wantErr: &InvalidAmountError{},
			wantMsg: "Please enter a valid amount",
		},
		{
			name:    "zero amount",
			mutate:  func(d *Draft) { d.Amount = "0" },
			wantErr: &InvalidAmountError{},
			wantMsg: "Please enter a valid amount",
		},
		{
			name:    "negative amount",
			mutate:  func(d *Draft) { d.Amount = "-10" },
			wantErr: &InvalidAmountError{},
			wantMsg: "Please enter a valid amount",
		},
		{
			name:    "sub-cent amount",
			mutate:  func(d *Draft) { d.Amount = "0.004" },
			wantErr: &InvalidAmountError{},
			wantMsg: "Please enter a valid amount",
		},
		{
			name:    "missing date",
			mutate:  func(d *Draft) { d.Date = "" },
			wantErr: &MissingDateError{},
			wantMsg: "Please select a transaction date",
		},
		{
			name:    "impossible date",
			mutate:  func(d *Draft) { d.Date = "2024-02-30" },
			wantErr: &MissingDateError{},
			wantMsg: "Please select a transaction date",
		},
		{
			name: "party checked before seller",
			mutate: func(d *Draft) {
				d.Type = "CONTRA"
				d.PartyName = ""
				d.SellerName = ""
			},
			wantErr: &MissingPartyError{},
			wantMsg: "Customer name is required",
		},
		{
			name: "seller checked before amount",
			mutate: func(d *Draft) {
				d.Type = "CONTRA"
				d.Amount = "abc"
			},
			wantErr: &MissingSellerError{},
			wantMsg: "Seller name is required for CONTRA transactions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			_, err := Validate(d)
			if err == nil {
				t.Fatalf("Validate() error = nil, want %T", tt.wantErr)
			}
			if got, want := errorType(err), errorType(tt.wantErr); got != want {
				t.Errorf("Validate() error type = %s, want %s", got, want)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !IsValidation(err) {
				t.Errorf("IsValidation(%v) = false, want true", err)
			}
		})
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cmd, err := Validate(Draft{
		Type:         " contra ",
		PartyName:    "  Ravi ",
		SellerName:   " Asha Traders ",
		ReceiverBank: "HDFC",
		Amount:       " 1250.50 ",
		Date:         "2024-06-01",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cmd.Type != domain.TransactionTypeContra {
		t.Errorf("Type = %q, want CONTRA", cmd.Type)
	}
	if cmd.PartyName != "Ravi" || cmd.SellerName != "Asha Traders" {
		t.Errorf("names not trimmed: %q / %q", cmd.PartyName, cmd.SellerName)
	}
	if cmd.ReceiverBank != "" {
		t.Errorf("ReceiverBank = %q, want empty for CONTRA", cmd.ReceiverBank)
	}
	if !cmd.Amount.Equal(decimal.RequireFromString("1250.50")) {
		t.Errorf("Amount = %s, want 1250.50", cmd.Amount)
	}
	if want := (civil.Date{Year: 2024, Month: 6, Day: 1}); cmd.Date != want {
		t.Errorf("Date = %v, want %v", cmd.Date, want)
	}
}

func TestValidateCashEntry(t *testing.T) {
	valid := CashEntry{
		PartyName:   "Ravi",
		Direction:   "CASH OUT",
		Description: "tea",
		Amount:      "200",
		Date:        "2024-06-01",
	}

	tests := []struct {
		name    string
		mutate  func(e *CashEntry)
		wantMsg string
	}{
		{"blank party", func(e *CashEntry) { e.PartyName = "" }, "Customer name is required"},
		{"no direction", func(e *CashEntry) { e.Direction = "" }, "Please select Cash IN or Cash OUT"},
		{"bad direction", func(e *CashEntry) { e.Direction = "SIDEWAYS" }, "Please select Cash IN or Cash OUT"},
		{"no description", func(e *CashEntry) { e.Description = " " }, "Description is required"},
		{"bad amount", func(e *CashEntry) { e.Amount = "0.00" }, "Please enter a valid amount"},
		{"sub-cent amount", func(e *CashEntry) { e.Amount = "0.006" }, "Please enter a valid amount"},
		{"no date", func(e *CashEntry) { e.Date = "" }, "Please select a transaction date"},
		{"direction before description", func(e *CashEntry) { e.Direction = ""; e.Description = "" }, "Please select Cash IN or Cash OUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			_, err := ValidateCashEntry(e)
			if err == nil {
				t.Fatalf("ValidateCashEntry() error = nil, want %q", tt.wantMsg)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("ValidateCashEntry() error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}

	t.Run("valid", func(t *testing.T) {
		cmd, err := ValidateCashEntry(valid)
		if err != nil {
			t.Fatalf("ValidateCashEntry() error = %v", err)
		}
		if cmd.Type != domain.TransactionTypeCash || cmd.Direction != domain.DirectionOut {
			t.Errorf("got type %q direction %q", cmd.Type, cmd.Direction)
		}
	})
}

func errorType(err error) string {
	var (
		mt *MissingTypeError
		mp *MissingPartyError
		ms *MissingSellerError
		mb *MissingBankError
		ia *InvalidAmountError
		md *MissingDateError
	)
	switch {
	case errors.As(err, &mt):
		return "MissingTypeError"
	case errors.As(err, &mp):
		return "MissingPartyError"
	case errors.As(err, &ms):
		return "MissingSellerError"
	case errors.As(err, &mb):
		return "MissingBankError"
	case errors.As(err, &ia):
		return "InvalidAmountError"
	case errors.As(err, &md):
		return "MissingDateError"
	}
	return "unknown"
}
