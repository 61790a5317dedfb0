package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// env is shared by every subcommand once the root pre-run loaded it.
type env struct {
	cfg    *common.Config
	logger *slog.Logger
	opts   []app.Option
}

func newRootCommand() *cobra.Command {
	e := &env{}
	rootCmd := &cobra.Command{
		Use:   "invoice-tracker",
		Short: "Heuristic invoice extraction, review feedback and export",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig()
			if err != nil {
				return err
			}
			if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
				cfg.Database.DSN = dsn
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = common.NewLogger(cmd.ErrOrStderr(), cfg.Log)
			slog.SetDefault(e.logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().String("db", "", "database DSN (overrides DB_URL)")

	rootCmd.AddCommand(
		newServeCommand(e),
		newExtractCommand(e),
		newIngestCommand(e),
		newExportCommand(e),
		newCompanyCommand(e),
		newMigrateCommand(e),
	)
	return rootCmd
}

// open connects, migrates and wires the services. The returned func closes
// the database.
func (e *env) open(ctx context.Context) (*app.App, func(), error) {
	db, err := repository.Open(ctx, e.cfg.Database, e.logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { repository.Close(db, e.logger) }

	if _, err := repository.Migrate(ctx, db, e.logger); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	a, err := app.New(e.cfg, db, e.logger, e.opts...)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	if err := a.Start(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	return a, closeDB, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
