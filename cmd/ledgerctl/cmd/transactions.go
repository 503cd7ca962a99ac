package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every transaction and the balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, _ *config.Config, svc *service.TransactionService) error {
				txs, balance, err := svc.List(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printTransactions(out, txs)
				fmt.Fprintln(out)
				printBalance(out, balance)
				return nil
			})
		},
	}
}

func newBalanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show income, outcome and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, _ *config.Config, svc *service.TransactionService) error {
				balance, err := svc.Balance(ctx)
				if err != nil {
					return err
				}
				printBalance(cmd.OutOrStdout(), balance)
				return nil
			})
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var (
		title    string
		value    string
		txType   string
		category string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Record a single transaction",
		Long: `Record a single transaction. Outcomes larger than the current
balance are rejected.

Example:
  ledgerctl create --title Rent --value 1200 --type outcome --category Housing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("--value %q is not a number", value)
			}

			return opts.withService(cmd, func(ctx context.Context, _ *config.Config, svc *service.TransactionService) error {
				tx, err := svc.Create(ctx, service.CreateRequest{
					Title:    title,
					Value:    amount,
					Type:     txType,
					Category: category,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", tx.ID)
				return nil
			})
		},
	}

	createCmd.Flags().StringVar(&title, "title", "", "transaction title")
	createCmd.Flags().StringVar(&value, "value", "", "transaction value, e.g. 12.50")
	createCmd.Flags().StringVar(&txType, "type", "", "income or outcome")
	createCmd.Flags().StringVar(&category, "category", "", "category title, created when missing")
	for _, name := range []string{"title", "value", "type", "category"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	return createCmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, _ *config.Config, svc *service.TransactionService) error {
				if err := svc.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, _ *config.Config, svc *service.TransactionService) error {
				categories, err := svc.Categories(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE")
				for _, c := range categories {
					fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Title)
				}
				return w.Flush()
			})
		},
	}
}

func printTransactions(out io.Writer, txs []*domain.Transaction) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tVALUE\tTITLE\tCATEGORY")
	for _, tx := range txs {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Type, tx.Value.StringFixed(2), tx.Title, category)
	}
	w.Flush()
}

func printBalance(out io.Writer, b domain.Balance) {
	fmt.Fprintf(out, "Income:  %s\n", b.Income.StringFixed(2))
	fmt.Fprintf(out, "Outcome: %s\n", b.Outcome.StringFixed(2))
	fmt.Fprintf(out, "Total:   %s\n", b.Total.StringFixed(2))
}
