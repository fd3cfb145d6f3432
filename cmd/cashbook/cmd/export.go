package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvloznov/cashbook/internal/export"
)

func newExportCmd(c *cli) *cobra.Command {
	var date, out, fetch string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a cash book day as CSV",
		Long: `Export one day of the cash book as CSV. With --out the file is written
locally ("-" for stdout); otherwise it is uploaded to the GCS_BUCKET.
--fetch prints an earlier upload.

Example:
  cashbook export --date 2024-06-01 --out -
  cashbook export --fetch gs://my-bucket/cashbook/2024/06/cashbook-2024-06-01.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fetch != "" {
				if _, _, err := export.ParseGCSURI(fetch); err != nil {
					return err
				}
				storage, err := c.app.Storage(c.ctx)
				if err != nil {
					return err
				}
				data, err := storage.Download(c.ctx, fetch)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			d := c.app.Today()
			if date != "" {
				var err error
				if d, err = parseDate(date); err != nil {
					return err
				}
			}

			if out != "" {
				local := export.NewExporter(c.app.Stores.Ledger, nil, "", c.app.Config.Export.Prefix)
				data, _, err := local.Render(c.ctx, d)
				if err != nil {
					return err
				}
				if out == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			}

			exp, err := c.app.Exporter(c.ctx)
			if err != nil {
				return err
			}
			uri, err := exp.ExportDay(c.ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", uri)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of uploading (- for stdout)")
	cmd.Flags().StringVar(&fetch, "fetch", "", "print a previously uploaded export given its gs:// URI")
	return cmd
}
