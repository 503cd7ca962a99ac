// Package cmd provides CLI commands for ledgerctl.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/finance-ledger/internal/bootstrap"
	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/dvloznov/finance-ledger/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// options holds the global flags shared by every subcommand.
type options struct {
	envFile    string
	backend    string
	sqlitePath string
	debug      bool
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Manage the personal finance ledger",
		Long: `ledgerctl records income and outcome transactions, shows the
balance and bulk-imports transactions from CSV files.

Example:
  ledgerctl create --title Salary --value 5000 --type income --category Job
  ledgerctl import ./statement.csv
  ledgerctl import gs://my-bucket/imports/statement.csv
  ledgerctl list`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env", "", "path to a .env file (default is ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "store", "", "store backend: memory, sqlite or bigquery (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite database path (overrides SQLITE_PATH)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newListCmd(opts),
		newBalanceCmd(opts),
		newCreateCmd(opts),
		newDeleteCmd(opts),
		newCategoriesCmd(opts),
		newImportCmd(opts),
		newUploadCmd(opts),
	)

	return rootCmd
}

// Execute runs the ledgerctl command tree. This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads configuration and applies the global flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	if o.sqlitePath != "" {
		cfg.Store.SQLitePath = o.sqlitePath
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// newLogger writes to stderr so command output on stdout stays parseable.
func (o *options) newLogger(cfg *config.Config) zerolog.Logger {
	return logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logger.ParseLevel(cfg.LogLevel))
}

// withService opens the configured store, runs fn and closes the store.
func (o *options) withService(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, svc *service.TransactionService) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx := logger.WithContext(cmd.Context(), o.newLogger(cfg))

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, cfg, service.NewTransactionService(store))
}
