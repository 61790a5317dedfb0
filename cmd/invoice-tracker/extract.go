package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-tracker/internal/extraction"
)

func newExtractCommand(e *env) *cobra.Command {
	var file, text, requestID string
	var save bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract invoice fields from text, a file or stdin",
		Long: "Reads --text, or acquires the text of --file (PDF or TXT), or reads stdin,\n" +
			"and prints the extraction response as JSON. With --file --save a draft\n" +
			"invoice is stored as well.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, closeDB, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if file != "" && save {
				out, err := a.Processor.ProcessFile(ctx, file)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			}

			if file != "" {
				res, err := a.Text.Extract(ctx, file)
				if err != nil {
					return err
				}
				text = res.Text
			} else if text == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(raw)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("no input text: use --text, --file or stdin")
			}

			resp, err := a.Extraction.Extract(ctx, extraction.TextRequest(requestID, text))
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "PDF or TXT file to read")
	cmd.Flags().StringVar(&text, "text", "", "OCR text to extract from")
	cmd.Flags().StringVar(&requestID, "request-id", "", "request id to audit under (generated when empty)")
	cmd.Flags().BoolVar(&save, "save", false, "store a draft invoice (requires --file)")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
