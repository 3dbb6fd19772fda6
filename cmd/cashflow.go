package cmd

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/cashflow"
	"github.com/oakwood-commons/cashbook/internal/formatter"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/internal/render"
	"github.com/oakwood-commons/cashbook/internal/ui"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

// Cashflow views.
const (
	viewSummary  = "summary"
	viewTimeline = "timeline"
	viewChart    = "chart"
	viewTable    = "table"
)

var cashflowViews = []string{viewSummary, viewTimeline, viewChart, viewTable}

func newCashflowCmd(o *rootOptions) *cobra.Command {
	var (
		days   int
		view   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Project the open documents of the coming days",
		Long: `Project what is still to be received and paid over the coming days.

Views:
  summary   totals of income, expenses and the resulting balance
  timeline  one branch per due date with its documents
  chart     cumulative balance as a Mermaid xychart
  table     one row per open document`,
		Example: `  cashbook cashflow
  cashbook cashflow --days 30 --view timeline
  cashbook cashflow --view chart > balance.mmd
  cashbook cashflow -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return usageErrorf("--days must be non-negative, got %d", days)
			}
			if !validView(view) {
				return usageErrorf("invalid --view %q: valid values are %s", view, strings.Join(cashflowViews, ", "))
			}
			format, err := formatter.ParseFormat(output)
			if err != nil || format == formatter.FormatHTML {
				return usageErrorf("invalid output format %q: valid values are table, yaml, json, toml", output)
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				cv, err := e.Cashflow(ctx, days)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if format != formatter.FormatTable {
					return export(w, cv, format, "")
				}
				switch view {
				case viewTimeline:
					fmt.Fprint(w, formatter.FormatTimeline(cv.Days, formatter.TimelineOptions{
						Title:    cashflowTitle(cv),
						Currency: o.cfg.Currency,
					}))
				case viewChart:
					fmt.Fprint(w, formatter.FormatBalanceChart(cv.Points, formatter.ChartOptions{Currency: o.cfg.Currency}))
				case viewTable:
					cols, err := e.Columns(ctx, registry.TableCashflow)
					if err != nil {
						return err
					}
					fmt.Fprint(w, renderTable(o, cv.Events, cols, -1))
				default:
					writeSummary(w, cv, o.cfg.Currency, o.run.NoColor)
				}
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&days, "days", 0, "number of days to project (default from config, 90)")
	fs.StringVar(&view, "view", viewSummary, "view: "+strings.Join(cashflowViews, "|"))
	fs.StringVarP(&output, "output", "o", "table", "output format: table (uses --view)|yaml|json|toml")

	cmd.AddCommand(newCashflowReportCmd(o))
	return cmd
}

func validView(v string) bool {
	for _, known := range cashflowViews {
		if v == known {
			return true
		}
	}
	return false
}

func cashflowTitle(cv core.CashflowView) string {
	return fmt.Sprintf("Cashflow %s – %s", formatter.Date(cv.From), formatter.Date(cv.To))
}

func writeSummary(w io.Writer, cv core.CashflowView, currency string, noColor bool) {
	s := cv.Summary
	fmt.Fprintln(w, cashflowTitle(cv))
	fmt.Fprintf(w, "  Income    %s\n", render.Signed(formatter.SignedMoney(s.In, currency), int64(s.In), noColor))
	fmt.Fprintf(w, "  Expenses  %s\n", render.Signed(formatter.SignedMoney(-s.Out, currency), -int64(s.Out), noColor))
	fmt.Fprintf(w, "  Balance   %s\n", render.Signed(formatter.SignedMoney(s.Balance, currency), int64(s.Balance), noColor))
	fmt.Fprintf(w, "  Documents %d\n", s.Events)
	if low, ok := cashflow.Lowest(cv.Points); ok {
		fmt.Fprintf(w, "Lowest projected balance %s on %s\n",
			render.Signed(formatter.SignedMoney(low.Balance, currency), int64(low.Balance), noColor),
			formatter.Date(low.Date))
	}
}

func newCashflowReportCmd(o *rootOptions) *cobra.Command {
	var (
		days     int
		asHTML   bool
		outFile  string
		openFile bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a Markdown (or HTML) cashflow report",
		Example: `  cashbook cashflow report > cashflow.md
  cashbook cashflow report --html --output-file cashflow.html --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if openFile && outFile == "" {
				return usageErrorf("--open requires --output-file")
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				cv, err := e.Cashflow(ctx, days)
				if err != nil {
					return err
				}
				report := formatter.CashflowReport(formatter.ReportInput{
					From:     cv.From,
					To:       cv.To,
					Currency: o.cfg.Currency,
					Summary:  cv.Summary,
					Days:     cv.Days,
					Points:   cv.Points,
				})
				if asHTML {
					report = htmlPage(cashflowTitle(cv), formatter.MarkdownToHTML(report))
				}
				if outFile == "" {
					_, err := io.WriteString(cmd.OutOrStdout(), report)
					return err
				}
				if err := os.WriteFile(outFile, []byte(report), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
				if openFile {
					return ui.OpenURL(outFile)
				}
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&days, "days", 0, "number of days to project (default from config, 90)")
	fs.BoolVar(&asHTML, "html", false, "convert the report to an HTML page")
	fs.StringVar(&outFile, "output-file", "", "write the report to this file instead of stdout")
	fs.BoolVar(&openFile, "open", false, "open the written file in the default browser")
	return cmd
}

// htmlPage wraps a rendered report. body comes from the Markdown renderer,
// which drops raw HTML from its input.
func htmlPage(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
