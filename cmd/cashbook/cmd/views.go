package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		typ, date, text, party, order string
		limit                         int
		desc                          bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ledger.Query{
				Filter:     ledger.Filter{Text: text, Party: party},
				Limit:      limit,
				Descending: desc,
			}
			if typ != "" {
				t, ok := domain.ParseTransactionType(typ)
				if !ok {
					return &ledger.MissingTypeError{Input: typ}
				}
				q.Filter.Type = t
			}
			if date != "" {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				q.Filter.Date = &d
			}
			switch order {
			case "created":
				q.OrderBy = ledger.OrderByCreatedAt
			case "date":
				q.OrderBy = ledger.OrderByDate
			default:
				return fmt.Errorf("--order must be created or date, got %q", order)
			}

			txs, err := c.app.Book.Search(c.ctx, q)
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), txs)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&typ, "type", "", "only this transaction type")
	f.StringVar(&date, "date", "", "only this date YYYY-MM-DD")
	f.StringVar(&text, "q", "", "text in name or description")
	f.StringVar(&party, "party", "", "exact customer name, ignoring case")
	f.StringVar(&order, "order", "created", "sort by created or date")
	f.BoolVar(&desc, "desc", false, "newest first")
	f.IntVar(&limit, "limit", 0, "maximum rows (0 for all)")
	return cmd
}

func newDayCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the cash book page for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := c.app.Today()
			if date != "" {
				var err error
				if d, err = parseDate(date); err != nil {
					return err
				}
			}
			printDay(cmd.OutOrStdout(), c.app.Book.Day(d))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	return cmd
}

func newBalanceCmd(c *cli) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the balance of all transactions or of one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if typ == "" {
				for _, t := range domain.TransactionTypes {
					fmt.Fprintf(out, "%-7s %s\n", t, ledger.FormatAmount(c.app.Book.TypeBalance(t)))
				}
				fmt.Fprintf(out, "%-7s %s\n", "TOTAL", ledger.FormatAmount(c.app.Book.Balance()))
				return nil
			}
			t, ok := domain.ParseTransactionType(typ)
			if !ok {
				return &ledger.MissingTypeError{Input: typ}
			}
			fmt.Fprintf(out, "%-7s %s\n", t, ledger.FormatAmount(c.app.Book.TypeBalance(t)))
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "CASH, BANK or CONTRA (default all)")
	return cmd
}

func newRecentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show the latest cash transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := c.app.Book.Recent(c.ctx)
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), txs)
			return nil
		},
	}
}

func newDatesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List the dates offered for a cash entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := c.app.Today()
			for _, d := range ledger.DateOptions(today) {
				marker := ""
				if d == today {
					marker = " (today)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", d, marker)
			}
			return nil
		},
	}
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil || !d.IsValid() {
		return civil.Date{}, &ledger.MissingDateError{Input: s}
	}
	return d, nil
}

func printTransactions(w io.Writer, txs []domain.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tNAME\tAMOUNT\tDESCRIPTION\tID")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.Type, tx.PartyName, ledger.FormatAmount(tx.Amount), tx.Description, tx.ID)
	}
	tw.Flush()
}

func printDay(w io.Writer, day ledger.DayView) {
	fmt.Fprintf(w, "Cash book for %s\n\n", day.Date)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREDIT\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, tx := range day.Credits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tx.PartyName, tx.Type, ledger.FormatAmount(ledger.DisplayAmount(tx)), tx.Description)
	}
	fmt.Fprintf(tw, "Total\t\t%s\t\n\n", ledger.FormatAmount(day.CreditTotal))

	fmt.Fprintln(tw, "DEBIT\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, tx := range day.Debits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tx.PartyName, tx.Type, ledger.FormatAmount(ledger.DisplayAmount(tx)), tx.Description)
	}
	fmt.Fprintf(tw, "Total\t\t%s\t\n", ledger.FormatAmount(day.DebitTotal))
	tw.Flush()

	fmt.Fprintf(w, "\nNet: %s\n", ledger.FormatAmount(day.Net))
}
