package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/pkg/columns"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

func newColumnsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Inspect and toggle the columns of a table",
		Long: `Every table has a registered column set. Columns carry a priority: 0 is
always shown, higher numbers are dropped first when the width runs out.

Tables: ` + strings.Join(registry.Tables, ", "),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newColumnsListCmd(o),
		newColumnsVisibleCmd(o),
		newColumnsToggleCmd(o, "show", true),
		newColumnsToggleCmd(o, "hide", false),
	)
	return cmd
}

func tableArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if !slices.Contains(registry.Tables, args[0]) {
		return usageErrorf("unknown table %q: valid values are %s", args[0], strings.Join(registry.Tables, ", "))
	}
	return nil
}

// columnRowColumns describe the registry rows themselves.
var columnRowColumns = []columns.Descriptor{
	{ID: "column_id", Label: "ID", Priority: 0, Width: "150", Accessor: columns.Field("column_id")},
	{ID: "label", Label: "Label", Priority: 0, Width: "150", Accessor: columns.Field("label")},
	{ID: "priority", Label: "Priority", Priority: 0, Width: "70", Align: columns.AlignRight, Accessor: columns.Field("priority")},
	{ID: "width", Label: "Width", Priority: 1, Width: "70", Align: columns.AlignRight, Accessor: columns.Field("width")},
	{ID: "is_active", Label: "Active", Priority: 1, Width: "70", Accessor: columns.Func(func(row any) any {
		if c, ok := row.(ledger.TableColumn); ok && c.IsActive {
			return "yes"
		}
		return "no"
	})},
	{ID: "align", Label: "Align", Priority: 2, Width: "70", Accessor: columns.Field("align")},
	{ID: "accessor", Label: "Accessor", Priority: 3, Width: "150", Accessor: columns.Field("accessor")},
}

func newColumnsListCmd(o *rootOptions) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "list <table>",
		Aliases: []string{"ls"},
		Short:   "List the registered columns of a table, hidden ones included",
		Args:    tableArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				rows, err := e.ColumnRows(ctx, args[0])
				if err != nil {
					return err
				}
				return writeList(cmd, o, &lf, "Columns of "+args[0], "columns", rows, columnRowColumns)
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newColumnsVisibleCmd(o *rootOptions) *cobra.Command {
	var buffer, px int
	cmd := &cobra.Command{
		Use:   "visible <table>",
		Short: "Print the ids of the columns that fit a width",
		Long: `Print the ids of the columns of a table that fit a width, in selection
order: priority 0 columns first, then the admitted columns tier by tier. The
ids that were dropped follow.

The width is --px pixels, or --width terminal cells converted with
layout.cellWidth. Without either the terminal width is used; when none can be
measured every column is shown.`,
		Example: `  cashbook columns visible documents --width 80
  cashbook columns visible documents --px 1024
  cashbook columns visible payments --width 120 --buffer 0`,
		Args: tableArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if px < 0 {
				return usageErrorf("--px must be non-negative, got %d", px)
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				cols, err := e.Columns(ctx, args[0])
				if err != nil {
					return err
				}
				m := layout.Unmeasured
				switch {
				case px > 0:
					m = layout.Measured(px)
				case o.width() > 0:
					m = layout.Measured(layout.CellsToPixels(o.width(), o.cellWidth()))
				}
				plan := layout.Plan(cols, m, o.buffer(buffer))

				w := cmd.OutOrStdout()
				for _, id := range plan.Visible {
					fmt.Fprintln(w, id)
				}
				if len(plan.Hidden) > 0 {
					fmt.Fprintf(w, "hidden: %s\n", strings.Join(plan.Hidden, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&buffer, "buffer", -1, "pixels kept free (default from config, 40)")
	cmd.Flags().IntVar(&px, "px", 0, "available width in pixels (overrides --width)")
	return cmd
}

func newColumnsToggleCmd(o *rootOptions, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <table> <column-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a column in every view of a table",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return err
			}
			return tableArg(cmd, args[:1])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				if err := e.SetColumnActive(ctx, args[0], args[1], active); err != nil {
					return err
				}
				state := "hidden"
				if active {
					state = "shown"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s.%s is now %s\n", args[0], args[1], state)
				return nil
			})
		},
	}
}
