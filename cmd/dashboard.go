package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/formatter"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/internal/render"
	"github.com/oakwood-commons/cashbook/pkg/columns"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

func newDashboardCmd(o *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show the projected balance, upcoming and overdue documents",
		Long: fmt.Sprintf(`Show the balance projected over the configured horizon, the open documents
due within the next %d days (the first %d of them) and every overdue document.`,
			core.UpcomingDays, core.UpcomingLimit),
		Example: `  cashbook dashboard
  cashbook dashboard -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatter.ParseFormat(output)
			if err != nil || format == formatter.FormatHTML {
				return usageErrorf("invalid output format %q: valid values are table, yaml, json, toml", output)
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				db, err := e.Dashboard(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if format != formatter.FormatTable {
					return export(w, db, format, "")
				}
				cols, err := e.Columns(ctx, registry.TableDocuments)
				if err != nil {
					return err
				}
				writeDashboard(w, o, db, cols)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|yaml|json|toml")
	return cmd
}

func writeDashboard(w io.Writer, o *rootOptions, db core.Dashboard, cols []columns.Descriptor) {
	currency := o.cfg.Currency
	fmt.Fprintf(w, "Dashboard %s\n", formatter.Date(db.From))
	fmt.Fprintf(w, "  Balance (until %s)  %s\n", formatter.Date(db.To),
		render.Signed(formatter.SignedMoney(db.Balance, currency), int64(db.Balance), o.run.NoColor))
	fmt.Fprintf(w, "  Upcoming (%d days)  %d\n", core.UpcomingDays, db.UpcomingCount)
	fmt.Fprintf(w, "  Overdue            %d\n", len(db.Overdue))

	if len(db.Upcoming) > 0 {
		fmt.Fprintf(w, "\nUpcoming payments (%d of %d)\n", len(db.Upcoming), db.UpcomingCount)
		fmt.Fprint(w, renderTable(o, db.Upcoming, cols, -1))
	}
	if len(db.Overdue) > 0 {
		fmt.Fprintf(w, "\nOverdue documents (%d)\n", len(db.Overdue))
		fmt.Fprint(w, renderTable(o, db.Overdue, cols, -1))
	}
}
