package ledger_test

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/infra/memory"
	"github.com/dvloznov/cashbook/internal/ledger"
)

func TestCashBookScenario(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	book := ledger.NewBook(store, ledger.WithScope(ledger.Filter{Type: domain.TransactionTypeCash}))
	day := civil.Date{Year: 2024, Month: 6, Day: 1}

	in, err := book.RecordCash(ctx, ledger.CashEntry{
		PartyName: "Ravi", Direction: "CASH IN", Description: "sale", Amount: "500", Date: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("RecordCash(IN) error = %v", err)
	}
	if got := ledger.FormatAmount(book.Balance()); got != "500.00" {
		t.Errorf("balance after IN = %s, want 500.00", got)
	}

	out, err := book.RecordCash(ctx, ledger.CashEntry{
		PartyName: "Ravi", Direction: "CASH OUT", Description: "supplies", Amount: "200", Date: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("RecordCash(OUT) error = %v", err)
	}
	if got := ledger.FormatAmount(out.Amount); got != "-200.00" {
		t.Errorf("stored OUT amount = %s, want -200.00", got)
	}

	view := book.Day(day)
	if len(view.Debits) != 1 || ledger.FormatAmount(ledger.DisplayAmount(view.Debits[0])) != "200.00" {
		t.Errorf("debit view = %+v, want one entry shown as 200.00", view.Debits)
	}
	if got := ledger.FormatAmount(view.Net); got != "300.00" {
		t.Errorf("net for date = %s, want 300.00", got)
	}

	_, err = book.Record(ctx, ledger.Draft{
		Type: "CONTRA", PartyName: "Ravi", SellerName: "", Amount: "50", Date: "2024-06-01",
	})
	if err == nil || err.Error() != "Seller name is required for CONTRA transactions" {
		t.Errorf("CONTRA without seller error = %v", err)
	}
	all, _ := store.Select(ctx, ledger.Query{})
	if len(all) != 2 {
		t.Errorf("store holds %d records, want 2", len(all))
	}

	if err := book.Delete(ctx, in.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := ledger.FormatAmount(book.Day(day).Net); got != "-200.00" {
		t.Errorf("net after delete = %s, want -200.00", got)
	}
	if book.Status().Stale {
		t.Error("book still stale after successful reload")
	}

	err = book.Delete(ctx, in.ID)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	empty := book.Day(civil.Date{Year: 2024, Month: 6, Day: 2})
	if len(empty.Credits) != 0 || len(empty.Debits) != 0 {
		t.Errorf("empty date view = %+v, want no entries", empty)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	book := ledger.NewBook(store, ledger.WithRecentLimit(2))

	for _, amount := range []string{"1", "2", "3"} {
		if _, err := book.RecordCash(ctx, ledger.CashEntry{
			PartyName: "Ravi", Direction: "IN", Description: "d", Amount: amount, Date: "2024-06-01",
		}); err != nil {
			t.Fatalf("RecordCash() error = %v", err)
		}
	}
	if _, err := book.Record(ctx, ledger.Draft{
		Type: "BANK", PartyName: "Ravi", ReceiverBank: "SBI", Amount: "9", Date: "2024-06-01",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	recent, err := book.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(Recent) = %d, want 2", len(recent))
	}
	for _, r := range recent {
		if r.Type != domain.TransactionTypeCash {
			t.Errorf("Recent() returned %s transaction", r.Type)
		}
	}
	if recent[0].CreatedAt.Before(recent[1].CreatedAt) {
		t.Error("Recent() not ordered newest first")
	}
	if got := ledger.FormatAmount(book.TypeBalance(domain.TransactionTypeBank)); got != "9.00" {
		t.Errorf("BANK balance = %s, want 9.00", got)
	}
}
