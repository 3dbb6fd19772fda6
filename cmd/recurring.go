package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

func newRecurringCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rules"},
		Short:   "Manage recurring documents such as rent, salaries and taxes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newRecurringListCmd(o),
		newRecurringAddCmd(o),
		newRecurringDeleteCmd(o),
		newRecurringMaterializeCmd(o),
	)
	return cmd
}

func newRecurringListCmd(o *rootOptions) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recurring rules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				rules, err := e.RecurringRules(ctx)
				if err != nil {
					return err
				}
				cols, err := e.Columns(ctx, registry.TableRecurring)
				if err != nil {
					return err
				}
				return writeList(cmd, o, &lf, "Recurring rules", "rules", rules, cols)
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newRecurringAddCmd(o *rootOptions) *cobra.Command {
	var (
		kind, direction, title, amount string
		currency, start, end           string
		day, interval                  int
		inactive                       bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule that plans a document every few months",
		Example: `  cashbook recurring add --kind standing_order --direction out --title Rent \
    --amount 2500.00 --start 2025-01-10
  cashbook recurring add --kind tax --direction out --title VAT --amount 800.00 \
    --start 2025-01-25 --interval 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := ledger.RecurringRuleInsert{
				Title:          title,
				Currency:       currency,
				DayOfMonth:     day,
				IntervalMonths: interval,
				IsActive:       !inactive,
			}
			var err error
			if in.Kind, err = ledger.ParseDocumentKind(kind); err != nil {
				return err
			}
			if in.Direction, err = ledger.ParseDirection(direction); err != nil {
				return err
			}
			if in.Amount, err = ledger.ParseAmount(amount); err != nil {
				return err
			}
			if in.StartDate, err = ledger.ParseDate(start); err != nil {
				return err
			}
			if in.EndDate, err = ledger.ParseDate(end); err != nil {
				return err
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				rule, err := e.AddRecurringRule(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created recurring rule %s\n", rule.ID)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&kind, "kind", "", "kind of the planned documents")
	fs.StringVar(&direction, "direction", "", "IN or OUT")
	fs.StringVar(&title, "title", "", "title of the planned documents")
	fs.StringVar(&amount, "amount", "", "gross amount of each document")
	fs.StringVar(&currency, "rule-currency", "", "currency (default --currency)")
	fs.StringVar(&start, "start", "", "first occurrence (YYYY-MM-DD)")
	fs.StringVar(&end, "end", "", "last possible occurrence (YYYY-MM-DD)")
	fs.IntVar(&day, "day", 0, "day of month (default the start day; clamped to short months)")
	fs.IntVar(&interval, "interval", 1, "months between occurrences")
	fs.BoolVar(&inactive, "inactive", false, "create the rule paused")
	for _, name := range []string{"kind", "direction", "title", "amount", "start"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newRecurringDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a rule; documents it created are kept",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				if err := e.DeleteRecurringRule(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted recurring rule %s\n", args[0])
				return nil
			})
		},
	}
}

func newRecurringMaterializeCmd(o *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Create the planned documents of every active rule",
		Long: `Create a planned document for every occurrence of every active rule between
today and the horizon. Occurrences that already have a document are skipped,
so running it again creates nothing new.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return usageErrorf("--days must be non-negative, got %d", days)
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				n, err := e.Materialize(ctx, days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d documents\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "horizon in days (default from config)")
	return cmd
}
