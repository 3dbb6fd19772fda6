// Package cashflow aggregates projected cashflow events into the summary,
// timeline and cumulative balance views.
package cashflow

import (
	"sort"

	"github.com/oakwood-commons/cashbook/internal/ledger"
)

// DefaultWindowDays is how far ahead the cashflow looks when no horizon is given.
const DefaultWindowDays = 90

// Window returns the inclusive date range [today, today+days].
// A non-positive days falls back to DefaultWindowDays.
func Window(today ledger.Date, days int) (from, to ledger.Date) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return today, today.AddDays(days)
}

// Summary holds the totals of the open remainders in a window.
type Summary struct {
	In      ledger.Amount `json:"in" yaml:"in"`
	Out     ledger.Amount `json:"out" yaml:"out"`
	Balance ledger.Amount `json:"balance" yaml:"balance"`
	Events  int           `json:"events" yaml:"events"`
}

// Summarize totals the remaining amounts per direction.
func Summarize(events []ledger.CashflowEvent) Summary {
	var s Summary
	for _, e := range events {
		switch e.Direction {
		case ledger.DirectionIn:
			s.In += e.Remaining
		case ledger.DirectionOut:
			s.Out += e.Remaining
		}
		s.Events++
	}
	s.Balance = s.In - s.Out
	return s
}

// Day groups the events due on one date.
type Day struct {
	Date   ledger.Date            `json:"date" yaml:"date"`
	Events []ledger.CashflowEvent `json:"events" yaml:"events"`
	In     ledger.Amount          `json:"in" yaml:"in"`
	Out    ledger.Amount          `json:"out" yaml:"out"`
}

// Net is the signed total of the day.
func (d Day) Net() ledger.Amount { return d.In - d.Out }

// Timeline groups events by event date in ascending order. Events keep
// their input order within a day.
func Timeline(events []ledger.CashflowEvent) []Day {
	index := map[string]int{}
	days := []Day{}
	for _, e := range events {
		key := e.EventDate.String()
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, Day{Date: e.EventDate})
		}
		d := &days[i]
		d.Events = append(d.Events, e)
		if e.Direction == ledger.DirectionIn {
			d.In += e.Remaining
		} else {
			d.Out += e.Remaining
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// Point is one day of the running balance.
type Point struct {
	Date               ledger.Date   `json:"date" yaml:"date"`
	DayNet             ledger.Amount `json:"day_net" yaml:"day_net"`
	CumulativeIncome   ledger.Amount `json:"cumulative_income" yaml:"cumulative_income"`
	CumulativeExpenses ledger.Amount `json:"cumulative_expenses" yaml:"cumulative_expenses"`
	Balance            ledger.Amount `json:"balance" yaml:"balance"`
}

// Balance returns the cumulative balance after each day that has events,
// starting from zero. Income adds, expenses subtract.
func Balance(events []ledger.CashflowEvent) []Point {
	days := Timeline(events)
	points := make([]Point, 0, len(days))
	var running, income, expenses ledger.Amount
	for _, d := range days {
		income += d.In
		expenses += d.Out
		running += d.Net()
		points = append(points, Point{
			Date:               d.Date,
			DayNet:             d.Net(),
			CumulativeIncome:   income,
			CumulativeExpenses: expenses,
			Balance:            running,
		})
	}
	return points
}

// Lowest returns the point with the smallest balance, ok is false for an
// empty series.
func Lowest(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	low := points[0]
	for _, p := range points[1:] {
		if p.Balance < low.Balance {
			low = p
		}
	}
	return low, true
}
