package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/infra/memory"
	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
)

type mockUploader struct {
	UploadFunc func(ctx context.Context, bucket, object, contentType string, r io.Reader) error
}

func (m *mockUploader) Upload(ctx context.Context, bucket, object, contentType string, r io.Reader) error {
	return m.UploadFunc(ctx, bucket, object, contentType, r)
}

var day = civil.Date{Year: 2024, Month: 6, Day: 1}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for i, tx := range []domain.Transaction{
		{ID: "in", Type: domain.TransactionTypeCash, PartyName: "Ravi", Amount: decimal.RequireFromString("500"), Date: day, Description: "sale"},
		{ID: "out", Type: domain.TransactionTypeCash, PartyName: "Meena", Amount: decimal.RequireFromString("-120.5"), Date: day, Description: "tea, snacks"},
		{ID: "other", Type: domain.TransactionTypeBank, PartyName: "Ravi", Amount: decimal.RequireFromString("70"), Date: day.AddDays(1)},
	} {
		tx.CreatedAt = time.Date(2024, 6, 1, 9, i, 0, 0, time.UTC)
		if _, err := store.Insert(context.Background(), tx); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	return store
}

func TestWriteDayCSV(t *testing.T) {
	store := seedStore(t)
	e := NewExporter(store, nil, "", "")

	data, _, err := e.Render(context.Background(), day)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := strings.Join([]string{
		"section,transactionId,transactionType,name,description,amount,transactionDate",
		"CREDIT,in,CASH,Ravi,sale,500.00,2024-06-01",
		`DEBIT,out,CASH,Meena,"tea, snacks",120.50,2024-06-01`,
		"TOTAL_CREDIT,,,,,500.00,2024-06-01",
		"TOTAL_DEBIT,,,,,120.50,2024-06-01",
		"NET,,,,,379.50,2024-06-01",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestExporter_ExportDay(t *testing.T) {
	store := seedStore(t)

	tests := []struct {
		name      string
		bucket    string
		uploadErr error
		wantURI   string
		wantErr   bool
	}{
		{"uploads", "shop-exports", nil, "gs://shop-exports/cashbook/2024/06/cashbook-2024-06-01.csv", false},
		{"no bucket", "", nil, "", true},
		{"upload fails", "shop-exports", errors.New("forbidden"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var uploaded bytes.Buffer
			up := &mockUploader{
				UploadFunc: func(ctx context.Context, bucket, object, contentType string, r io.Reader) error {
					if contentType != "text/csv" {
						t.Errorf("contentType = %q", contentType)
					}
					if _, err := io.Copy(&uploaded, r); err != nil {
						return err
					}
					return tt.uploadErr
				},
			}

			e := NewExporter(store, up, tt.bucket, "cashbook")
			uri, err := e.ExportDay(context.Background(), day)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExportDay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if uri != tt.wantURI {
				t.Errorf("ExportDay() = %q, want %q", uri, tt.wantURI)
			}
			if !tt.wantErr && !strings.Contains(uploaded.String(), "NET,,,,,379.50") {
				t.Errorf("uploaded content missing totals:\n%s", uploaded.String())
			}
		})
	}
}

func TestExporter_HandleJob(t *testing.T) {
	up := &mockUploader{
		UploadFunc: func(ctx context.Context, bucket, object, contentType string, r io.Reader) error { return nil },
	}
	e := NewExporter(seedStore(t), up, "b", "p")

	job := &jobs.Job{JobID: "j1", Type: jobs.JobTypeExportDay, Date: "2024-06-01"}
	if err := e.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob() error = %v", err)
	}
	if job.Result != "gs://b/p/2024/06/cashbook-2024-06-01.csv" {
		t.Errorf("Result = %q", job.Result)
	}

	if err := e.HandleJob(context.Background(), &jobs.Job{Date: "June"}); err == nil {
		t.Error("HandleJob() with bad date should fail")
	}
}

type failingStore struct {
	ledger.Store
}

func (failingStore) Select(ctx context.Context, q ledger.Query) ([]domain.Transaction, error) {
	return nil, errors.New("db down")
}

func TestExporter_RenderStoreError(t *testing.T) {
	_, _, err := NewExporter(failingStore{}, nil, "b", "").Render(context.Background(), day)
	var se *ledger.StoreError
	if !errors.As(err, &se) {
		t.Errorf("Render() error = %v, want *ledger.StoreError", err)
	}
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://bucket/a/b.csv", "bucket", "a/b.csv", false},
		{"gs://bucket", "", "", true},
		{"s3://bucket/a", "", "", true},
		{"gs:///a", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			b, o, err := ParseGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGCSURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if b != tt.wantBucket || o != tt.wantObject {
				t.Errorf("ParseGCSURI() = %q, %q, want %q, %q", b, o, tt.wantBucket, tt.wantObject)
			}
		})
	}
}
