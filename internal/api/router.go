// Package api wires the HTTP handlers and middleware into a chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/cashbook/internal/api/handlers"
	"github.com/dvloznov/cashbook/internal/api/middleware"
	"github.com/dvloznov/cashbook/internal/customers"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
)

// Deps are the collaborators served by the router. Publisher may be nil.
type Deps struct {
	Book      *ledger.Book
	Customers *customers.Service
	JobStore  jobs.JobStore
	Publisher jobs.Publisher
	Location  *time.Location
	Log       zerolog.Logger

	APIKey      string
	CORSOrigins []string
}

// NewRouter builds the HTTP handler for the cash book API.
func NewRouter(d Deps) http.Handler {
	txHandler := handlers.NewTransactionsHandler(d.Book, d.Location)
	customersHandler := handlers.NewCustomersHandler(d.Customers)
	jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Publisher, d.Location)

	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKey(d.APIKey))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", txHandler.List)
			r.Post("/", txHandler.Create)
			r.Get("/recent", txHandler.Recent)
			r.Delete("/{id}", txHandler.Delete)
		})
		r.Post("/cash-entries", txHandler.CreateCashEntry)
		r.Get("/cashbook", txHandler.CashBook)
		r.Get("/balance", txHandler.Balance)
		r.Get("/dates", txHandler.Dates)
		r.Get("/status", txHandler.Status)
		r.Post("/reload", txHandler.Reload)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customersHandler.List)
			r.Post("/", customersHandler.Create)
			r.Get("/search", customersHandler.Search)
			r.Get("/{name}/transactions", customersHandler.Transactions)
		})

		r.Post("/exports", jobsHandler.EnqueueExport)
		r.Post("/notion-sync", jobsHandler.EnqueueNotionSync)
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobsHandler.ListJobs)
			r.Get("/{id}", jobsHandler.GetJob)
		})
	})

	return r
}
