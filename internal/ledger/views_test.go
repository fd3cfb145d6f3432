package ledger

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/cashbook/internal/domain"
)

func tx(id string, amount string, date civil.Date) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		Type:      domain.TransactionTypeCash,
		PartyName: "Ravi",
		Amount:    decimal.RequireFromString(amount),
		Date:      date,
	}
}

func ids(txs []domain.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestBalance(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	tests := []struct {
		name string
		txs  []domain.Transaction
		want string
	}{
		{"empty", nil, "0.00"},
		{"single credit", []domain.Transaction{tx("a", "500", d)}, "500.00"},
		{"credit and debit", []domain.Transaction{tx("a", "500", d), tx("b", "-200", d)}, "300.00"},
		{"rounds half up", []domain.Transaction{tx("a", "0.005", d)}, "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(Balance(tt.txs)); got != tt.want {
				t.Errorf("Balance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBalance_NoFloatDrift(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	var txs []domain.Transaction
	for i := 0; i < 1000; i++ {
		txs = append(txs, tx("t", "0.10", d))
	}
	if got := FormatAmount(Balance(txs)); got != "100.00" {
		t.Errorf("Balance() = %s, want 100.00", got)
	}
}

func TestBalance_Additive(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	txs := []domain.Transaction{
		tx("a", "12.34", d), tx("b", "-5.67", d), tx("c", "100", d),
		tx("d", "-0.01", d), tx("e", "3.33", d),
	}
	c := Classify(txs)
	sum := Balance(c.Credits).Add(Balance(c.Debits))
	if !sum.Equal(Balance(txs)) {
		t.Errorf("credits+debits = %s, all = %s", sum, Balance(txs))
	}
}

func TestBalance_AdditiveSubCent(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	txs := []domain.Transaction{tx("in", "0.004", d), tx("out", "-0.006", d)}

	c := Classify(txs)
	sum := Balance(c.Credits).Add(Balance(c.Debits))
	if !sum.Equal(Balance(txs)) {
		t.Errorf("credits+debits = %s, all = %s", sum, Balance(txs))
	}
	if got := FormatAmount(Balance(txs)); got != "0.00" {
		t.Errorf("FormatAmount(Balance()) = %s, want 0.00", got)
	}

	view := Day(txs, d)
	if net := view.CreditTotal.Sub(view.DebitTotal); !net.Equal(view.Net) {
		t.Errorf("CreditTotal-DebitTotal = %s, Net = %s", net, view.Net)
	}
}

func TestOnDate(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 6, Day: 1}
	txs := []domain.Transaction{
		tx("before", "1", day.AddDays(-1)),
		tx("on-1", "2", day),
		tx("after", "3", day.AddDays(1)),
		tx("on-2", "4", day),
	}
	// Created just before midnight UTC on the previous day; the calendar date
	// still decides scope.
	txs[1].CreatedAt = time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)

	got := OnDate(txs, day)
	if diff := cmp.Diff([]string{"on-1", "on-2"}, ids(got)); diff != "" {
		t.Errorf("OnDate() mismatch (-want +got):\n%s", diff)
	}

	again := OnDate(txs, day)
	if diff := cmp.Diff(ids(got), ids(again)); diff != "" {
		t.Errorf("OnDate() not idempotent:\n%s", diff)
	}
}

func TestOnDate_Empty(t *testing.T) {
	got := OnDate(nil, civil.Date{Year: 2024, Month: 6, Day: 1})
	if got == nil || len(got) != 0 {
		t.Errorf("OnDate(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestClassify(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	txs := []domain.Transaction{
		tx("c1", "10", d), tx("d1", "-1", d), tx("c2", "20", d), tx("d2", "-2", d),
	}

	c := Classify(txs)
	if diff := cmp.Diff([]string{"c1", "c2"}, ids(c.Credits)); diff != "" {
		t.Errorf("credits mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d1", "d2"}, ids(c.Debits)); diff != "" {
		t.Errorf("debits mismatch (-want +got):\n%s", diff)
	}
	if !c.Debits[0].Amount.IsNegative() {
		t.Error("debit lost its sign")
	}
	if got := FormatAmount(DisplayAmount(c.Debits[1])); got != "2.00" {
		t.Errorf("DisplayAmount() = %s, want 2.00", got)
	}
}

func TestDay(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	txs := []domain.Transaction{
		tx("in", "500", d),
		tx("out", "-200", d),
		tx("other-day", "999", d.AddDays(1)),
	}

	v := Day(txs, d)
	if got := FormatAmount(v.CreditTotal); got != "500.00" {
		t.Errorf("CreditTotal = %s, want 500.00", got)
	}
	if got := FormatAmount(v.DebitTotal); got != "200.00" {
		t.Errorf("DebitTotal = %s, want 200.00", got)
	}
	if got := FormatAmount(v.Net); got != "300.00" {
		t.Errorf("Net = %s, want 300.00", got)
	}

	empty := Day(txs, d.AddDays(5))
	if len(empty.Credits) != 0 || len(empty.Debits) != 0 {
		t.Errorf("empty day has entries: %+v", empty)
	}
	if got := FormatAmount(empty.Net); got != "0.00" {
		t.Errorf("empty Net = %s, want 0.00", got)
	}
}

func TestDateOptions(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 3, Day: 1}
	got := DateOptions(today)

	if len(got) != 38 {
		t.Fatalf("len(DateOptions) = %d, want 38", len(got))
	}
	if want := (civil.Date{Year: 2024, Month: 1, Day: 31}); got[0] != want {
		t.Errorf("first = %v, want %v", got[0], want)
	}
	if got[30] != today {
		t.Errorf("got[30] = %v, want today %v", got[30], today)
	}
	if want := (civil.Date{Year: 2024, Month: 3, Day: 8}); got[37] != want {
		t.Errorf("last = %v, want %v", got[37], want)
	}
}

func TestFilter_Matches(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 1}
	base := domain.Transaction{Type: domain.TransactionTypeBank, PartyName: "Ravi Kumar", Description: "Rent for June", Date: d}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"type match", Filter{Type: domain.TransactionTypeBank}, true},
		{"type mismatch", Filter{Type: domain.TransactionTypeCash}, false},
		{"date match", Filter{}.OnDate(d), true},
		{"date mismatch", Filter{}.OnDate(d.AddDays(1)), false},
		{"text in name", Filter{Text: "kumar"}, true},
		{"text in description", Filter{Text: "JUNE"}, true},
		{"text missing", Filter{Text: "july"}, false},
		{"party exact", Filter{Party: "ravi kumar"}, true},
		{"party partial", Filter{Party: "ravi"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(base); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
