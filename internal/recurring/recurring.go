// Package recurring expands recurring rules into planned documents.
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

// DefaultHorizonDays is how far ahead Materialize generates documents.
const DefaultHorizonDays = 90

// shortestMonth is the last day of month that exists in every month.
const shortestMonth = 28

// RRule builds the monthly recurrence of rule. Days past the 28th fall on
// the last day of shorter months: BYMONTHDAY lists every candidate day up to
// DayOfMonth and BYSETPOS=-1 keeps the latest one the month has.
func RRule(rule ledger.RecurringRule) (*rrule.RRule, error) {
	if rule.StartDate.IsZero() {
		return nil, fmt.Errorf("recurring rule %q: %w: start date is required", rule.Title, ledger.ErrValidation)
	}
	interval := rule.IntervalMonths
	if interval <= 0 {
		interval = 1
	}
	day := rule.DayOfMonth
	if day <= 0 {
		day = rule.StartDate.Day()
	}

	opt := rrule.ROption{
		Freq:     rrule.MONTHLY,
		Interval: interval,
		Dtstart:  rule.StartDate.Time(),
	}
	if day > shortestMonth {
		for d := shortestMonth; d <= day; d++ {
			opt.Bymonthday = append(opt.Bymonthday, d)
		}
		opt.Bysetpos = []int{-1}
	} else {
		opt.Bymonthday = []int{day}
	}
	if !rule.EndDate.IsZero() {
		opt.Until = rule.EndDate.Time()
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("recurring rule %q: %w", rule.Title, err)
	}
	return r, nil
}

// Occurrences returns the due dates of rule within [from, to].
func Occurrences(rule ledger.RecurringRule, from, to ledger.Date) ([]ledger.Date, error) {
	if to.Before(from) {
		return []ledger.Date{}, nil
	}
	r, err := RRule(rule)
	if err != nil {
		return nil, err
	}
	times := r.Between(from.Time(), to.Time(), true)
	out := make([]ledger.Date, len(times))
	for i, t := range times {
		out[i] = ledger.DateOf(t)
	}
	return out, nil
}

// occurrenceKey identifies one generated document.
func occurrenceKey(ruleID string, due ledger.Date) string {
	return ruleID + "@" + due.String()
}

// Plan lists the documents to create for active rules in [from, to],
// skipping occurrences already present in existing.
func Plan(rules []ledger.RecurringRule, existing []ledger.Document, from, to ledger.Date) ([]ledger.DocumentInsert, error) {
	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		if d.RecurringRuleID != "" {
			seen[occurrenceKey(d.RecurringRuleID, d.DueDate)] = true
		}
	}

	out := []ledger.DocumentInsert{}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		dates, err := Occurrences(rule, from, to)
		if err != nil {
			return nil, err
		}
		for _, due := range dates {
			key := occurrenceKey(rule.ID, due)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ledger.DocumentInsert{
				Kind:            rule.Kind,
				Direction:       rule.Direction,
				Status:          ledger.StatusPlanned,
				Title:           rule.Title,
				DueDate:         due,
				AmountGross:     rule.Amount,
				Currency:        rule.Currency,
				RecurringRuleID: rule.ID,
			})
		}
	}
	return out, nil
}

// Creator stores documents in one batch, skipping duplicates.
type Creator interface {
	CreateBatch(ctx context.Context, ins []ledger.DocumentInsert) ([]ledger.Document, notify.Change, error)
}

// Materialize creates the planned documents of rules for the next
// horizonDays days and reports how many were created. Running it twice
// creates nothing the second time.
func Materialize(ctx context.Context, docs Creator, rules []ledger.RecurringRule, existing []ledger.Document,
	today ledger.Date, horizonDays int,
) (int, notify.Change, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	planned, err := Plan(rules, existing, today, today.AddDays(horizonDays))
	if err != nil {
		return 0, notify.Change{}, err
	}
	if len(planned) == 0 {
		return 0, notify.Change{}, nil
	}
	created, change, err := docs.CreateBatch(ctx, planned)
	if err != nil {
		return 0, notify.Change{}, fmt.Errorf("materialize recurring documents: %w", err)
	}
	return len(created), change, nil
}

// NextOccurrence returns the first due date on or after day, ok is false
// when the rule has ended.
func NextOccurrence(rule ledger.RecurringRule, day ledger.Date) (ledger.Date, bool, error) {
	r, err := RRule(rule)
	if err != nil {
		return ledger.Date{}, false, err
	}
	t := r.After(day.Time().Add(-time.Nanosecond), false)
	if t.IsZero() {
		return ledger.Date{}, false, nil
	}
	return ledger.DateOf(t), true, nil
}
