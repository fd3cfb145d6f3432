package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no transaction matches the given id.
var ErrNotFound = errors.New("transaction not found")

// ValidationError is implemented by every input failure reported by the validator.
// Field names the wire field that needs correcting.
type ValidationError interface {
	error
	Field() string
}

// MissingTypeError means no known transaction type was selected.
type MissingTypeError struct {
	Input string
}

func (e *MissingTypeError) Error() string { return "Please select a transaction type" }
func (e *MissingTypeError) Field() string { return "transactionType" }

// MissingPartyError means the customer name was empty after trimming.
type MissingPartyError struct{}

func (e *MissingPartyError) Error() string { return "Customer name is required" }
func (e *MissingPartyError) Field() string { return "name" }

// MissingSellerError means a CONTRA transaction had no seller name.
type MissingSellerError struct{}

func (e *MissingSellerError) Error() string {
	return "Seller name is required for CONTRA transactions"
}
func (e *MissingSellerError) Field() string { return "sellerName" }

// MissingBankError means a BANK transaction had no receiver bank.
type MissingBankError struct{}

func (e *MissingBankError) Error() string {
	return "Receiver bank is required for BANK transactions"
}
func (e *MissingBankError) Field() string { return "receiverBank" }

// InvalidAmountError means the amount was not a number or not strictly positive.
type InvalidAmountError struct {
	Input string
}

func (e *InvalidAmountError) Error() string { return "Please enter a valid amount" }
func (e *InvalidAmountError) Field() string { return "amount" }

// MissingDateError means the date was absent or not a valid calendar date.
type MissingDateError struct {
	Input string
}

func (e *MissingDateError) Error() string { return "Please select a transaction date" }
func (e *MissingDateError) Field() string { return "transactionDate" }

// MissingDirectionError means a cash entry was neither CASH IN nor CASH OUT.
type MissingDirectionError struct {
	Input string
}

func (e *MissingDirectionError) Error() string { return "Please select Cash IN or Cash OUT" }
func (e *MissingDirectionError) Field() string { return "direction" }

// MissingDescriptionError means a cash entry had no description.
type MissingDescriptionError struct{}

func (e *MissingDescriptionError) Error() string { return "Description is required" }
func (e *MissingDescriptionError) Field() string { return "description" }

// StoreError wraps a failure reported by the ledger store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ledger store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DeleteError reports a failed deletion. The current view is left untouched.
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("cannot delete transaction without ID: %v", e.Err)
	}
	return fmt.Sprintf("delete transaction %s: %v", e.ID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
