package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/cashbook/internal/api/middleware"
	"github.com/dvloznov/cashbook/internal/ledger"
)

// TransactionsHandler serves recording, listing, deletion and the derived
// cash book views of a ledger.Book.
type TransactionsHandler struct {
	book *ledger.Book
	loc  *time.Location
	now  func() time.Time
}

// NewTransactionsHandler creates a handler over book. loc decides which
// calendar date "today" is.
func NewTransactionsHandler(book *ledger.Book, loc *time.Location) *TransactionsHandler {
	return &TransactionsHandler{book: book, loc: loc, now: time.Now}
}

// ViewStatus accompanies derived views so clients can tell a stale view.
type ViewStatus struct {
	Fetch    string     `json:"fetch"`
	Stale    bool       `json:"stale"`
	Count    int        `json:"count"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (h *TransactionsHandler) viewStatus() ViewStatus {
	st := h.book.Status()
	vs := ViewStatus{
		Fetch: string(st.Fetch),
		Stale: st.Stale,
		Count: st.Count,
	}
	if !st.LoadedAt.IsZero() {
		vs.LoadedAt = &st.LoadedAt
	}
	if st.Err != nil {
		vs.Error = st.Err.Error()
	}
	return vs
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft ledger.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}

	tx, err := h.book.Record(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

// CreateCashEntry handles POST /api/cash-entries
func (h *TransactionsHandler) CreateCashEntry(w http.ResponseWriter, r *http.Request) {
	var entry ledger.CashEntry
	if !decodeJSON(w, r, &entry) {
		return
	}

	tx, err := h.book.RecordCash(r.Context(), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

// List handles GET /api/transactions?type=&date=&q=&party=&order=&desc=&limit=
// It queries the store directly rather than the loaded set.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	t, err := parseTypeParam(query.Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateParam(query.Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, ok := parseIntParam(query.Get("limit"))
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	q := ledger.Query{
		Filter: ledger.Filter{
			Type:  t,
			Date:  date,
			Text:  query.Get("q"),
			Party: query.Get("party"),
		},
		Limit:      limit,
		Descending: query.Get("desc") == "true",
	}
	switch strings.ToLower(query.Get("order")) {
	case "", "created":
		if q.Descending {
			q.OrderBy = ledger.OrderByCreatedAt
		}
	case "date":
		q.OrderBy = ledger.OrderByDate
	default:
		middleware.WriteError(w, http.StatusBadRequest, "order must be created or date")
		return
	}

	txs, err := h.book.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": newTransactionList(txs),
		"count":        len(txs),
	})
}

// Recent handles GET /api/transactions/recent
func (h *TransactionsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	txs, err := h.book.Recent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": newTransactionList(txs),
		"count":        len(txs),
	})
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.book.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactionId": id,
		"status":        "deleted",
		"view":          h.viewStatus(),
	})
}

// DayResponse is the cash book page for one date.
type DayResponse struct {
	Date        string                `json:"date"`
	Credits     []TransactionResponse `json:"credits"`
	Debits      []TransactionResponse `json:"debits"`
	CreditTotal json.Number           `json:"creditTotal"`
	DebitTotal  json.Number           `json:"debitTotal"`
	Net         json.Number           `json:"net"`
	View        ViewStatus            `json:"view"`
}

// CashBook handles GET /api/cashbook?date=YYYY-MM-DD. The date defaults to today.
func (h *TransactionsHandler) CashBook(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	d := ledger.Today(h.now(), h.loc)
	if date != nil {
		d = *date
	}

	day := h.book.Day(d)
	middleware.WriteJSON(w, http.StatusOK, DayResponse{
		Date:        day.Date.String(),
		Credits:     newTransactionList(day.Credits),
		Debits:      newTransactionList(day.Debits),
		CreditTotal: amount(day.CreditTotal),
		DebitTotal:  amount(day.DebitTotal),
		Net:         amount(day.Net),
		View:        h.viewStatus(),
	})
}

// Balance handles GET /api/balance?type=CASH. Without a type the balance
// covers the whole loaded set.
func (h *TransactionsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	t, err := parseTypeParam(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	scope := "ALL"
	balance := h.book.Balance()
	if t != "" {
		scope = string(t)
		balance = h.book.TypeBalance(t)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"type":    scope,
		"balance": amount(balance),
		"view":    h.viewStatus(),
	})
}

// Dates handles GET /api/dates
func (h *TransactionsHandler) Dates(w http.ResponseWriter, r *http.Request) {
	today := ledger.Today(h.now(), h.loc)
	opts := ledger.DateOptions(today)

	dates := make([]string, 0, len(opts))
	for _, d := range opts {
		dates = append(dates, d.String())
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"today": today.String(),
		"dates": dates,
	})
}

// Status handles GET /api/status
func (h *TransactionsHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.viewStatus())
}

// Reload handles POST /api/reload
func (h *TransactionsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.book.Reload(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.viewStatus())
}
