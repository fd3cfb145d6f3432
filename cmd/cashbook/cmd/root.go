// Package cmd provides the commands of the cashbook CLI.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvloznov/cashbook/internal/app"
	"github.com/dvloznov/cashbook/internal/config"
)

// cli carries the state shared by every command of one invocation.
type cli struct {
	envFile string
	debug   bool

	app *app.App
	ctx context.Context
}

// NewRootCmd builds the command tree.
func NewRootCmd() (*cobra.Command, func() error) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "cashbook",
		Short: "Record and review a small business cash book",
		Long: `cashbook records CASH, BANK and CONTRA transactions and shows the
cash book: credits and debits for a day, running balances and the
latest cash movements.

The store is chosen by STORE_BACKEND (memory, sqlite, postgres or
bigquery); see .env.example.

Example:
  cashbook cash --name "Ravi" --direction in --description "advance" --amount 500
  cashbook day --date 2024-06-01
  cashbook balance --type CASH`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}

	root.PersistentFlags().StringVar(&c.envFile, "env", "", "path to a .env file (default ./.env if present)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRecordCmd(c),
		newCashCmd(c),
		newListCmd(c),
		newDayCmd(c),
		newBalanceCmd(c),
		newRecentCmd(c),
		newDeleteCmd(c),
		newDatesCmd(c),
		newCustomersCmd(c),
		newExportCmd(c),
	)

	closeFn := func() error {
		if c.app == nil {
			return nil
		}
		return c.app.Close()
	}
	return root, closeFn
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	root, closeFn := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if cerr := closeFn(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error: closing stores: %v\n", cerr)
	}
	return err
}

// open loads configuration, opens the store, applies migrations and loads
// the book before any subcommand runs.
func (c *cli) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.debug {
		cfg.Log.Level = "debug"
	} else if os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, ctx, err := app.New(ctx, cfg, app.WithLogOutput(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	c.app, c.ctx = a, ctx

	if cfg.Store.Backend == config.BackendMemory {
		a.Log.Warn().Msg("Using the memory backend: nothing is kept after this command")
	}
	if _, err := a.Stores.Migrate(ctx, "cashbook-cli"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return a.Book.Reload(ctx)
}
