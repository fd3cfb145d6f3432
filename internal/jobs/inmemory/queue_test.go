package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/cashbook/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, id string, want jobs.JobStatus) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), id)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), id)
	t.Fatalf("job %s did not reach %s, last state %+v", id, want, job)
	return nil
}

func startQueue(t *testing.T, handler jobs.JobHandler) (*Queue, *Store) {
	t.Helper()
	store := NewStore()
	q := NewQueue(10, store)
	q.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = q.Stop(context.Background())
	})
	return q, store
}

func TestQueue_Succeeds(t *testing.T) {
	q, store := startQueue(t, func(ctx context.Context, job *jobs.Job) error {
		job.Result = "gs://bucket/" + job.Date + ".csv"
		return nil
	})

	job := &jobs.Job{Type: jobs.JobTypeExportDay, Date: "2024-06-01"}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if job.JobID == "" || job.MaxRetries != jobs.DefaultMaxRetries {
		t.Errorf("Publish() did not fill defaults: %+v", job)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusSucceeded)
	if got.Result != "gs://bucket/2024-06-01.csv" {
		t.Errorf("Result = %q", got.Result)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Errorf("timestamps not set: %+v", got)
	}
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	q, store := startQueue(t, func(ctx context.Context, job *jobs.Job) error {
		if calls.Add(1) < 3 {
			return errors.New("bucket unavailable")
		}
		return nil
	})

	job := &jobs.Job{Type: jobs.JobTypeNotionSync}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusSucceeded)
	if got.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", got.RetryCount)
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want cleared", got.Error)
	}
}

func TestQueue_FailsAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	q, store := startQueue(t, func(ctx context.Context, job *jobs.Job) error {
		calls.Add(1)
		return errors.New("permanent")
	})

	job := &jobs.Job{Type: jobs.JobTypeExportDay, MaxRetries: 1}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if got.Error != "permanent" {
		t.Errorf("Error = %q, want permanent", got.Error)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("handler calls = %d, want 2", n)
	}
}

func TestQueue_PublishAfterStop(t *testing.T) {
	q := NewQueue(1, nil)
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := q.Publish(context.Background(), &jobs.Job{}); err == nil {
		t.Error("Publish() after Stop should fail")
	}
	if err := q.Start(context.Background(), nil); err == nil {
		t.Error("Start() after Stop should fail")
	}
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, j := range []jobs.Job{
		{JobID: "c", Type: jobs.JobTypeExportDay, Status: jobs.JobStatusSucceeded, CreatedAt: base.Add(2 * time.Hour)},
		{JobID: "a", Type: jobs.JobTypeExportDay, Status: jobs.JobStatusQueued, CreatedAt: base},
		{JobID: "b", Type: jobs.JobTypeNotionSync, Status: jobs.JobStatusSucceeded, CreatedAt: base.Add(time.Hour)},
	} {
		j := j
		if err := s.SaveJob(ctx, &j); err != nil {
			t.Fatalf("SaveJob(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all oldest first", jobs.JobFilter{}, []string{"a", "b", "c"}},
		{"by type", jobs.JobFilter{Type: jobs.JobTypeExportDay}, []string{"a", "c"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusSucceeded}, []string{"b", "c"}},
		{"offset and limit", jobs.JobFilter{Offset: 1, Limit: 1}, []string{"b"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListJobs() returned %d jobs, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].JobID != tt.want[i] {
					t.Errorf("ListJobs()[%d] = %s, want %s", i, got[i].JobID, tt.want[i])
				}
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.GetJob(context.Background(), "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob() error = %v, want ErrJobNotFound", err)
	}
	if err := s.UpdateJobStatus(context.Background(), "missing", jobs.JobStatusFailed, ""); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("UpdateJobStatus() error = %v, want ErrJobNotFound", err)
	}
	if err := s.SaveJob(context.Background(), &jobs.Job{}); err == nil {
		t.Error("SaveJob() without ID should fail")
	}
}
