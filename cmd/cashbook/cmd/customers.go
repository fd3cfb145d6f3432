package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/cashbook/internal/domain"
	"github.com/dvloznov/cashbook/internal/ledger"
)

func newCustomersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage the buyers directory",
	}
	cmd.AddCommand(
		newCustomersAddCmd(c),
		newCustomersListCmd(c),
		newCustomersSearchCmd(c),
		newCustomersTransactionsCmd(c),
	)
	return cmd
}

func newCustomersAddCmd(c *cli) *cobra.Command {
	var cust domain.Customer

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := c.app.Customers.Add(c.ctx, cust)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added customer %s (%s)\n", added.Name, added.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cust.Name, "name", "", "customer name")
	f.StringVar(&cust.Email, "email", "", "email address")
	f.StringVar(&cust.Phone, "phone", "", "phone number")
	f.StringVar(&cust.Address, "address", "", "postal address")
	return cmd
}

func newCustomersListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := c.app.Customers.List(c.ctx)
			if err != nil {
				return err
			}
			printCustomers(cmd.OutOrStdout(), cs)
			return nil
		},
	}
}

func newCustomersSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find customers by name, email or phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := c.app.Customers.Search(c.ctx, args[0])
			if err != nil {
				return err
			}
			printCustomers(cmd.OutOrStdout(), cs)
			return nil
		},
	}
}

func newCustomersTransactionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "txns <name>",
		Short: "List the transactions recorded for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := c.app.Customers.Transactions(c.ctx, args[0])
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), txs)
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", ledger.FormatAmount(ledger.Balance(txs)))
			return nil
		},
	}
}

func printCustomers(w io.Writer, cs []domain.Customer) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No customers found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE\tEMAIL\tADDRESS")
	for _, c := range cs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Phone, c.Email, c.Address)
	}
	tw.Flush()
}
