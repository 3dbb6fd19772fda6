package formatter

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/cashbook/internal/cashflow"
	"github.com/oakwood-commons/cashbook/internal/ledger"
)

// TimelineOptions controls the timeline tree.
type TimelineOptions struct {
	// Title labels the root node. Defaults to "Cashflow".
	Title string
	// Currency is used for day totals. Events print their own currency.
	Currency string
	// NoAmounts prints titles only.
	NoAmounts bool
	// MaxEvents caps the events listed per day; the rest are summarized.
	// 0 = unlimited.
	MaxEvents int
}

// FormatTimeline renders days as a tree: one branch per date with its net
// total, one leaf per event.
//
//	Cashflow
//	├── 05.03.2025  +5,000.00 PLN
//	│   └── IN  Invoice 1/2025  5,000.00 PLN
//	└── 10.03.2025  -3,000.00 PLN
//	    └── OUT  Office rent  3,000.00 PLN
func FormatTimeline(days []cashflow.Day, opts TimelineOptions) string {
	title := opts.Title
	if title == "" {
		title = "Cashflow"
	}
	tree := treeprint.NewWithRoot(title)
	if len(days) == 0 {
		tree.AddNode("no open documents")
		return tree.String()
	}

	for _, d := range days {
		label := Date(d.Date)
		if !opts.NoAmounts {
			label += "  " + SignedMoney(d.Net(), opts.Currency)
		}
		branch := tree.AddBranch(label)

		events := d.Events
		more := 0
		if opts.MaxEvents > 0 && len(events) > opts.MaxEvents {
			more = len(events) - opts.MaxEvents
			events = events[:opts.MaxEvents]
		}
		for _, e := range events {
			branch.AddNode(eventLabel(e, opts.NoAmounts))
		}
		if more > 0 {
			branch.AddNode(fmt.Sprintf("... %d more", more))
		}
	}
	return tree.String()
}

func eventLabel(e ledger.CashflowEvent, noAmounts bool) string {
	label := fmt.Sprintf("%-3s  %s", e.Direction, OrDash(e.Title))
	if noAmounts {
		return label
	}
	label += "  " + Money(e.Remaining, e.Currency)
	if e.PaidAmount > 0 {
		label += fmt.Sprintf(" (paid %s of %s)", Number(e.PaidAmount), Number(e.Amount))
	}
	return label
}
