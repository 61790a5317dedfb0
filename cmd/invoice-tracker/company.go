package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-tracker/internal/profiles"
)

func newCompanyCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Show or change the own-company profile",
	}
	cmd.AddCommand(newCompanyShowCommand(e), newCompanySetCommand(e), newCompanyImportCommand(e))
	return cmd
}

func newCompanyShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeDB, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			out, err := a.Company.ExportYAML(cmd.Context())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newCompanySetCommand(e *env) *cobra.Command {
	var req profiles.UpdateCompanyRequest
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeDB, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			c, err := a.Company.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "company profile saved: %s, %s %s\n", c.Name, c.PostalCode, c.City)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&req.Street, "street", "", "street and number")
	cmd.Flags().StringVar(&req.PostalCode, "postal-code", "", "5-digit postal code")
	cmd.Flags().StringVar(&req.City, "city", "", "city")
	cmd.Flags().StringVar(&req.TaxID, "tax-id", "", "VAT id or tax number")
	return cmd
}

func newCompanyImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Store the profile read from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeDB, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			c, err := a.Company.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "company profile imported: %s\n", c.Name)
			return nil
		},
	}
}
