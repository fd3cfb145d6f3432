package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExportDay writes one day of the cash book to object storage.
	JobTypeExportDay JobType = "export_day"
	// JobTypeNotionSync mirrors ledger transactions to Notion.
	JobTypeNotionSync JobType = "notion_sync"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusQueued indicates the job is waiting to be processed, including
	// while it waits for a retry.
	JobStatusQueued JobStatus = "QUEUED"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "RUNNING"
	// JobStatusSucceeded indicates the job completed successfully.
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	// JobStatusFailed indicates the job failed and will not be retried.
	JobStatusFailed JobStatus = "FAILED"
)

// DefaultMaxRetries applies when a job is published without MaxRetries.
const DefaultMaxRetries = 3

// ErrJobNotFound is returned by stores for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// Job is a unit of background work. Only the fields relevant to Type are set.
type Job struct {
	// JobID is the unique identifier for this job.
	JobID  string    `json:"job_id"`
	Type   JobType   `json:"type"`
	Status JobStatus `json:"status"`

	// Date is the cash book day (YYYY-MM-DD) for export jobs.
	Date string `json:"date,omitempty"`

	// TransactionType limits a Notion sync to one type; empty means all.
	TransactionType string `json:"transaction_type,omitempty"`

	// Result describes the output, e.g. the object URI of an export.
	Result string `json:"result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details of the last failed attempt.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// Publish enqueues a job, filling in its ID, status and creation time.
	Publish(ctx context.Context, job *Job) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. It may set job.Result and
// should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job *Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *Job) error

	// GetJob retrieves a job by ID. Unknown ids return ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*Job, error)

	// ListJobs retrieves jobs with optional filtering, oldest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*Job, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Type   JobType
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

// Router dispatches jobs to a handler by type.
type Router map[JobType]JobHandler

// Handle is a JobHandler that routes to the handler registered for job.Type.
func (rt Router) Handle(ctx context.Context, job *Job) error {
	h, ok := rt[job.Type]
	if !ok {
		return fmt.Errorf("no handler for job type %q", job.Type)
	}
	return h(ctx, job)
}
