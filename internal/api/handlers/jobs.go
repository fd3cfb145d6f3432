package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dvloznov/cashbook/internal/api/middleware"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
	"github.com/dvloznov/cashbook/internal/logger"
)

// JobsHandler enqueues background exports and Notion syncs and reports on them.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	loc       *time.Location
	now       func() time.Time
}

// NewJobsHandler creates a new jobs handler. A nil publisher disables enqueueing.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, loc *time.Location) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// EnqueueExport handles POST /api/exports. The body's date defaults to today.
func (h *JobsHandler) EnqueueExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d := ledger.Today(h.now(), h.loc)
	if date != nil {
		d = *date
	}

	h.enqueue(w, r, &jobs.Job{Type: jobs.JobTypeExportDay, Date: d.String()})
}

// EnqueueNotionSync handles POST /api/notion-sync
func (h *JobsHandler) EnqueueNotionSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionType string `json:"transactionType"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	t, err := parseTypeParam(req.TransactionType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.enqueue(w, r, &jobs.Job{Type: jobs.JobTypeNotionSync, TransactionType: string(t)})
}

// enqueue fills in the job before publishing so the response never reads a
// job a worker may already be running.
func (h *JobsHandler) enqueue(w http.ResponseWriter, r *http.Request, job *jobs.Job) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background jobs are disabled")
		return
	}

	job.JobID = uuid.NewString()
	job.Status = jobs.JobStatusQueued
	job.CreatedAt = h.now()
	job.MaxRetries = jobs.DefaultMaxRetries
	resp := *job

	if err := h.publisher.Publish(r.Context(), job); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("job_type", string(resp.Type)).Msg("Failed to enqueue job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Str("job_id", resp.JobID).Str("job_type", string(resp.Type)).Msg("Job enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, resp)
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs?type=&status=&limit=&offset=
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Type:   jobs.JobType(query.Get("type")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	var ok bool
	if filter.Limit, ok = parseIntParam(query.Get("limit")); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if filter.Offset, ok = parseIntParam(query.Get("offset")); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
