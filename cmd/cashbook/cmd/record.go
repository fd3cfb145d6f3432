package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/cashbook/internal/ledger"
)

func newRecordCmd(c *cli) *cobra.Command {
	var d ledger.Draft

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a CASH, BANK or CONTRA transaction",
		Long: `Record a general transaction. The amount is stored as entered;
BANK needs --bank and CONTRA needs --seller.

Example:
  cashbook record --type BANK --name "Ravi" --bank "SBI" --amount 1200 --date 2024-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if d.Date == "" {
				d.Date = c.app.Today().String()
			}
			tx, err := c.app.Book.Record(c.ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s %s for %s on %s\n",
				tx.ID, tx.Type, ledger.FormatAmount(tx.Amount), tx.PartyName, tx.Date)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&d.Type, "type", "", "transaction type: CASH, BANK or CONTRA")
	f.StringVar(&d.PartyName, "name", "", "customer name")
	f.StringVar(&d.SellerName, "seller", "", "seller name (CONTRA)")
	f.StringVar(&d.ReceiverBank, "bank", "", "receiver bank (BANK)")
	f.StringVar(&d.Amount, "amount", "", "amount, greater than zero")
	f.StringVar(&d.Date, "date", "", "transaction date YYYY-MM-DD (default today)")
	f.StringVar(&d.Description, "description", "", "free text")
	return cmd
}

func newCashCmd(c *cli) *cobra.Command {
	var e ledger.CashEntry

	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Record a cash entry (money in or out)",
		Long: `Record an ad-hoc cash movement. Cash out is stored as a negative amount.

Example:
  cashbook cash --name "Meena" --direction out --description "tea" --amount 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.Date == "" {
				e.Date = c.app.Today().String()
			}
			tx, err := c.app.Book.RecordCash(c.ctx, e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s %s for %s on %s\n",
				tx.ID, tx.Type, ledger.FormatAmount(tx.Amount), tx.PartyName, tx.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Cash balance: %s\n", ledger.FormatAmount(c.app.Book.TypeBalance(tx.Type)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&e.PartyName, "name", "", "customer name")
	f.StringVar(&e.Direction, "direction", "", "in or out")
	f.StringVar(&e.Description, "description", "", "what the cash was for")
	f.StringVar(&e.Amount, "amount", "", "amount, greater than zero")
	f.StringVar(&e.Date, "date", "", "transaction date YYYY-MM-DD (default today)")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Book.Delete(c.ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
