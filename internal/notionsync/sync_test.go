package notionsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/infra/memory"
	"github.com/dvloznov/cashbook/internal/jobs"
)

type mockNotion struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	ArchivePageFunc   func(ctx context.Context, pageID string) error
	QueryDatabaseFunc func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	created  []notionapi.Properties
	archived []string
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	m.created = append(m.created, properties)
	return &notionapi.Page{ID: "new-page"}, nil
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.UpdatePageFunc != nil {
		return m.UpdatePageFunc(ctx, pageID, properties)
	}
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *mockNotion) ArchivePage(ctx context.Context, pageID string) error {
	if m.ArchivePageFunc != nil {
		return m.ArchivePageFunc(ctx, pageID)
	}
	m.archived = append(m.archived, pageID)
	return nil
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, filter)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func page(id, txID, typ string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			propTransactionID: &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: txID}},
			},
			propType: &notionapi.SelectProperty{
				Select: notionapi.Option{Name: typ},
			},
		},
	}
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	for _, tx := range []domain.Transaction{
		{ID: "t1", Type: domain.TransactionTypeCash, PartyName: "Ravi", Amount: decimal.NewFromInt(100), Date: d},
		{ID: "t2", Type: domain.TransactionTypeCash, PartyName: "Meena", Amount: decimal.NewFromInt(-40), Date: d},
		{ID: "t3", Type: domain.TransactionTypeBank, PartyName: "Ravi", ReceiverBank: "SBI", Amount: decimal.NewFromInt(70), Date: d},
	} {
		tx.CreatedAt = time.Now()
		if _, err := store.Insert(context.Background(), tx); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	return store
}

func TestSyncer_SyncTransactions(t *testing.T) {
	pages := []notionapi.Page{
		page("p1", "t1", "CASH"),
		page("p-stale", "gone", "CASH"),
		page("p-bank-stale", "old-bank", "BANK"),
	}

	tests := []struct {
		name         string
		opts         Options
		want         Result
		wantArchived []string
	}{
		{
			name:         "all types",
			opts:         Options{},
			want:         Result{Created: 2, Archived: 2, Skipped: 1},
			wantArchived: []string{"p-stale", "p-bank-stale"},
		},
		{
			name:         "cash only leaves bank pages alone",
			opts:         Options{Type: domain.TransactionTypeCash},
			want:         Result{Created: 1, Archived: 1, Skipped: 1},
			wantArchived: []string{"p-stale"},
		},
		{
			name: "dry run changes nothing",
			opts: Options{DryRun: true},
			want: Result{Created: 2, Archived: 2, Skipped: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockNotion{
				QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
					return &notionapi.DatabaseQueryResponse{Results: pages}, nil
				},
			}
			s := NewSyncer(seed(t), client, "db")

			got, err := s.SyncTransactions(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("SyncTransactions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SyncTransactions() = %+v, want %+v", got, tt.want)
			}
			if len(client.archived) != len(tt.wantArchived) {
				t.Fatalf("archived = %v, want %v", client.archived, tt.wantArchived)
			}
			for i := range client.archived {
				if client.archived[i] != tt.wantArchived[i] {
					t.Errorf("archived = %v, want %v", client.archived, tt.wantArchived)
				}
			}
			if tt.opts.DryRun && len(client.created) != 0 {
				t.Errorf("dry run created %d pages", len(client.created))
			}
		})
	}
}

func TestSyncer_Pagination(t *testing.T) {
	var calls int
	client := &mockNotion{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			calls++
			if req.StartCursor == "" {
				return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{page("p1", "t1", "CASH")}, HasMore: true, NextCursor: "next"}, nil
			}
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{page("p2", "t2", "CASH")}}, nil
		},
	}

	got, err := NewSyncer(seed(t), client, "db").SyncTransactions(context.Background(), Options{Type: domain.TransactionTypeCash})
	if err != nil {
		t.Fatalf("SyncTransactions() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("QueryDatabase calls = %d, want 2", calls)
	}
	if got.Skipped != 2 || got.Created != 0 {
		t.Errorf("SyncTransactions() = %+v, want both pages skipped", got)
	}
}

func TestSyncer_HandleJob(t *testing.T) {
	tests := []struct {
		name       string
		job        *jobs.Job
		createErr  error
		wantErr    bool
		wantResult string
	}{
		{"success", &jobs.Job{Type: jobs.JobTypeNotionSync}, nil, false, "created=3 archived=0 skipped=0 failed=0"},
		{"page failures retry", &jobs.Job{Type: jobs.JobTypeNotionSync, TransactionType: "bank"}, errors.New("rate limited"), true, "created=0 archived=0 skipped=0 failed=1"},
		{"bad type", &jobs.Job{Type: jobs.JobTypeNotionSync, TransactionType: "crypto"}, nil, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockNotion{}
			if tt.createErr != nil {
				client.CreatePageFunc = func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
					return nil, tt.createErr
				}
			}
			err := NewSyncer(seed(t), client, "db").HandleJob(context.Background(), tt.job)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.job.Result != tt.wantResult {
				t.Errorf("Result = %q, want %q", tt.job.Result, tt.wantResult)
			}
		})
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	tx := domain.Transaction{
		ID:          "t9",
		Type:        domain.TransactionTypeCash,
		PartyName:   "Ravi",
		Amount:      decimal.RequireFromString("-120.505"),
		Date:        civil.Date{Year: 2024, Month: 6, Day: 1},
		Description: "tea",
	}
	props := TransactionToNotionProperties(tx)

	title, ok := props[propName].(notionapi.TitleProperty)
	if !ok || title.Title[0].Text.Content != "Ravi" {
		t.Errorf("Name = %#v", props[propName])
	}
	if n := props[propAmount].(notionapi.NumberProperty).Number; n != -120.51 {
		t.Errorf("Amount = %v, want -120.51", n)
	}
	if f := props[propFlow].(notionapi.SelectProperty).Select.Name; f != "Debit" {
		t.Errorf("Flow = %q, want Debit", f)
	}
	start := time.Time(*props[propDate].(notionapi.DateProperty).Date.Start)
	if !start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", start)
	}
	for _, absent := range []string{propSeller, propReceiverBank, propCreatedAt} {
		if _, ok := props[absent]; ok {
			t.Errorf("property %q should be omitted", absent)
		}
	}
	if got := extractTransactionID(notionapi.Page{Properties: props}); got != "t9" {
		t.Errorf("extractTransactionID() = %q, want t9", got)
	}
}
