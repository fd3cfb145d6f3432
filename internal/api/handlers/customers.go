package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/cashbook/internal/api/middleware"
	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

// CustomersHandler serves the buyers directory.
type CustomersHandler struct {
	svc *customers.Service
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(svc *customers.Service) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// List handles GET /api/customers
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCustomers(w, cs)
}

// Create handles POST /api/customers
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Add(r.Context(), domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, c)
}

// Search handles GET /api/customers/search?q=
func (h *CustomersHandler) Search(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCustomers(w, cs)
}

// Transactions handles GET /api/customers/{name}/transactions
func (h *CustomersHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi routes on RawPath when the path carries escapes like %2F.
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid customer name")
			return
		}
		name = unescaped
	}

	txs, err := h.svc.Transactions(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":         name,
		"transactions": newTransactionList(txs),
		"balance":      amount(ledger.Balance(txs)),
		"count":        len(txs),
	})
}

func writeCustomers(w http.ResponseWriter, cs []domain.Customer) {
	if cs == nil {
		cs = []domain.Customer{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customers": cs,
		"count":     len(cs),
	})
}
