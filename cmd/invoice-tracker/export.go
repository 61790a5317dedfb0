package main

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

func newExportCommand(e *env) *cobra.Command {
	var format, from, to, out, requestID string

	cmd := &cobra.Command{
		Use:       "export invoices|feedbacks",
		Short:     "Export invoices (xlsx/csv) or feedback (csv/xml)",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"invoices", "feedbacks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, closeDB, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			var buf bytes.Buffer
			if args[0] == "feedbacks" {
				_, err = a.Export.Feedbacks(ctx, &buf, export.ParseFormat(format, export.FormatCSV), repository.FeedbackFilter{RequestID: requestID})
			} else {
				_, err = a.Export.Invoices(ctx, &buf, export.ParseFormat(format, export.FormatXLSX), from, to)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "xlsx|csv for invoices, csv|xml for feedbacks")
	cmd.Flags().StringVar(&from, "from", "", "first issue date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last issue date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "only feedback for this request")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	return cmd
}
