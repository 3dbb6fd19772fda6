package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/cashbook/internal/cashflow"
)

// ChartOptions controls the balance chart output.
type ChartOptions struct {
	// Title is the chart title. Defaults to "Cumulative balance".
	Title string
	// Currency labels the y axis.
	Currency string
}

// FormatBalanceChart renders the cumulative balance as a Mermaid xychart
// with one x tick per day that has events.
func FormatBalanceChart(points []cashflow.Point, opts ChartOptions) string {
	title := opts.Title
	if title == "" {
		title = "Cumulative balance"
	}

	lines := []string{
		"xychart-beta",
		fmt.Sprintf("    title %q", escapeChartLabel(title)),
	}

	ticks := make([]string, len(points))
	values := make([]string, len(points))
	for i, p := range points {
		ticks[i] = fmt.Sprintf("%q", DateShort(p.Date))
		values[i] = p.Balance.String()
	}
	lines = append(lines, fmt.Sprintf("    x-axis [%s]", strings.Join(ticks, ", ")))

	axis := "Balance"
	if opts.Currency != "" {
		axis += " (" + strings.ToUpper(opts.Currency) + ")"
	}
	lines = append(lines, fmt.Sprintf("    y-axis %q", axis))
	lines = append(lines, fmt.Sprintf("    line [%s]", strings.Join(values, ", ")))

	return strings.Join(lines, "\n") + "\n"
}

// escapeChartLabel keeps labels on one line; Mermaid labels are quoted, so
// internal quotes become apostrophes.
func escapeChartLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}
