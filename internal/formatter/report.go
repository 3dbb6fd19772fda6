package formatter

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/cashbook/internal/cashflow"
	"github.com/oakwood-commons/cashbook/internal/ledger"
)

// ReportInput is everything a cashflow report prints.
type ReportInput struct {
	From, To ledger.Date
	Currency string
	Summary  cashflow.Summary
	Days     []cashflow.Day
	Points   []cashflow.Point
}

// CashflowReport renders a Markdown report: summary figures, the lowest
// projected balance and one table row per open document.
func CashflowReport(in ReportInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Cashflow %s – %s\n\n", Date(in.From), Date(in.To))

	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Income | %s |\n", SignedMoney(in.Summary.In, in.Currency))
	fmt.Fprintf(&b, "| Expenses | %s |\n", Money(-in.Summary.Out, in.Currency))
	fmt.Fprintf(&b, "| Balance | %s |\n\n", Money(in.Summary.Balance, in.Currency))

	if low, ok := cashflow.Lowest(in.Points); ok {
		fmt.Fprintf(&b, "Lowest projected balance: **%s** on %s.\n\n", Money(low.Balance, in.Currency), Date(low.Date))
	}

	if len(in.Days) == 0 {
		b.WriteString("No open documents in this period.\n")
		return b.String()
	}

	b.WriteString("## Timeline\n\n")
	b.WriteString("| Date | Direction | Title | Remaining |\n|---|---|---|---:|\n")
	for _, d := range in.Days {
		for _, e := range d.Events {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				Date(d.Date), e.Direction.Label(), escapeMarkdownCell(OrDash(e.Title)), Money(e.Remaining, e.Currency))
		}
	}
	return b.String()
}

// MarkdownToHTML converts a Markdown report into an HTML fragment. Raw HTML
// in the input is dropped.
func MarkdownToHTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.Render(doc, renderer))
}

func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
