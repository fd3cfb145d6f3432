package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/cashbook/internal/jobs"
	"github.com/dvloznov/cashbook/internal/ledger"
	"github.com/dvloznov/cashbook/internal/logger"
)

// Exporter renders day pages from the ledger store and uploads them.
type Exporter struct {
	store    ledger.Store
	uploader Uploader
	bucket   string
	prefix   string
}

// NewExporter creates an Exporter writing under gs://bucket/prefix/.
func NewExporter(store ledger.Store, uploader Uploader, bucket, prefix string) *Exporter {
	return &Exporter{store: store, uploader: uploader, bucket: bucket, prefix: prefix}
}

// ObjectName is where the page for d is stored: prefix/YYYY/MM/cashbook-YYYY-MM-DD.csv.
func (e *Exporter) ObjectName(d civil.Date) string {
	return path.Join(e.prefix, fmt.Sprintf("%04d", d.Year), fmt.Sprintf("%02d", int(d.Month)), "cashbook-"+d.String()+".csv")
}

// Render loads the transactions dated d and renders the CSV page.
func (e *Exporter) Render(ctx context.Context, d civil.Date) ([]byte, ledger.DayView, error) {
	txs, err := e.store.Select(ctx, ledger.Query{Filter: ledger.Filter{}.OnDate(d)})
	if err != nil {
		return nil, ledger.DayView{}, &ledger.StoreError{Op: "select", Err: err}
	}

	view := ledger.Day(txs, d)
	var buf bytes.Buffer
	if err := WriteDayCSV(&buf, view); err != nil {
		return nil, ledger.DayView{}, err
	}
	return buf.Bytes(), view, nil
}

// ExportDay uploads the page for d and returns its gs:// URI.
func (e *Exporter) ExportDay(ctx context.Context, d civil.Date) (string, error) {
	if e.bucket == "" {
		return "", fmt.Errorf("ExportDay: no export bucket configured")
	}

	data, view, err := e.Render(ctx, d)
	if err != nil {
		return "", fmt.Errorf("ExportDay: %w", err)
	}

	object := e.ObjectName(d)
	if err := e.uploader.Upload(ctx, e.bucket, object, "text/csv", bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("ExportDay: upload: %w", err)
	}

	uri := GCSURI(e.bucket, object)
	log := logger.FromContext(ctx)
	log.Info().
		Str("date", d.String()).
		Int("credits", len(view.Credits)).
		Int("debits", len(view.Debits)).
		Str("uri", uri).
		Msg("Cash book day exported")
	return uri, nil
}

// HandleJob is a jobs.JobHandler for JobTypeExportDay.
func (e *Exporter) HandleJob(ctx context.Context, job *jobs.Job) error {
	d, err := civil.ParseDate(job.Date)
	if err != nil {
		return fmt.Errorf("export job %s: invalid date %q: %w", job.JobID, job.Date, err)
	}
	uri, err := e.ExportDay(ctx, d)
	if err != nil {
		return err
	}
	job.Result = uri
	return nil
}
