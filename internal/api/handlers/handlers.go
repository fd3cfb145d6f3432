// Package handlers serves the cash book over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/api/middleware"
	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
	"github.com/dvloznov/cashbook/internal/logger"
)

// TransactionResponse is the wire form of a transaction. Amount keeps its
// sign; DisplayAmount is the magnitude shown in a ledger column.
type TransactionResponse struct {
	ID              string      `json:"transactionId"`
	Type            string      `json:"transactionType"`
	Name            string      `json:"name"`
	SellerName      string      `json:"sellerName,omitempty"`
	ReceiverBank    string      `json:"receiverBank,omitempty"`
	Amount          json.Number `json:"amount"`
	DisplayAmount   json.Number `json:"displayAmount"`
	Flow            string      `json:"flow"`
	TransactionDate string      `json:"transactionDate"`
	Description     string      `json:"description,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

func newTransactionResponse(tx domain.Transaction) TransactionResponse {
	flow := "CREDIT"
	if tx.IsDebit() {
		flow = "DEBIT"
	}
	return TransactionResponse{
		ID:              tx.ID,
		Type:            string(tx.Type),
		Name:            tx.PartyName,
		SellerName:      tx.SellerName,
		ReceiverBank:    tx.ReceiverBank,
		Amount:          amount(tx.Amount.Round(2)),
		DisplayAmount:   amount(ledger.DisplayAmount(tx).Round(2)),
		Flow:            flow,
		TransactionDate: tx.Date.String(),
		Description:     tx.Description,
		CreatedAt:       tx.CreatedAt,
	}
}

func newTransactionList(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	return out
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// errorResponse carries the failing input field for validation errors.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	var (
		storeErr  *ledger.StoreError
		deleteErr *ledger.DeleteError
	)
	switch {
	case ledger.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, customers.ErrNameRequired), errors.Is(err, customers.ErrEmptySearch):
		return http.StatusBadRequest
	case errors.As(err, &deleteErr):
		if deleteErr.ID == "" {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.As(err, &storeErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError logs server-side failures and writes err as JSON.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var v ledger.ValidationError
	if errors.As(err, &v) {
		resp.Field = v.Field()
	}
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
		if status == http.StatusInternalServerError {
			resp.Error = "Internal server error"
		}
	}
	middleware.WriteJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// parseDateParam reads an optional YYYY-MM-DD value; empty returns ok with nil.
func parseDateParam(s string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return nil, &ledger.MissingDateError{Input: s}
	}
	return &d, nil
}

// parseTypeParam reads an optional transaction type.
func parseTypeParam(s string) (domain.TransactionType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, ok := domain.ParseTransactionType(s)
	if !ok {
		return "", &ledger.MissingTypeError{Input: s}
	}
	return t, nil
}

// parseIntParam reads an optional non-negative integer.
func parseIntParam(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
