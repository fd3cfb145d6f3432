// Package export renders cash book pages and ships them to object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

var csvHeader = []string{"section", "transactionId", "transactionType", "name", "description", "amount", "transactionDate"}

// WriteDayCSV writes one cash book page: credits, then debits, then totals.
// Amounts are display amounts, so debits appear as magnitudes.
func WriteDayCSV(w io.Writer, view ledger.DayView) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteDayCSV: header: %w", err)
	}
	for _, row := range entryRows("CREDIT", view.Credits) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteDayCSV: credit row: %w", err)
		}
	}
	for _, row := range entryRows("DEBIT", view.Debits) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteDayCSV: debit row: %w", err)
		}
	}

	date := view.Date.String()
	totals := [][]string{
		{"TOTAL_CREDIT", "", "", "", "", ledger.FormatAmount(view.CreditTotal), date},
		{"TOTAL_DEBIT", "", "", "", "", ledger.FormatAmount(view.DebitTotal), date},
		{"NET", "", "", "", "", ledger.FormatAmount(view.Net), date},
	}
	if err := cw.WriteAll(totals); err != nil {
		return fmt.Errorf("WriteDayCSV: totals: %w", err)
	}
	return nil
}

func entryRows(section string, txs []domain.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			section,
			tx.ID,
			string(tx.Type),
			tx.PartyName,
			tx.Description,
			ledger.FormatAmount(ledger.DisplayAmount(tx)),
			tx.Date.String(),
		})
	}
	return rows
}
