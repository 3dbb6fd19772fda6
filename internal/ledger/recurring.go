package ledger

import (
	"errors"
	"strings"
	"time"
)

// RecurringRule generates a planned document every IntervalMonths months on
// DayOfMonth, from StartDate until EndDate (inclusive) when set.
type RecurringRule struct {
	ID             string       `json:"id" yaml:"id"`
	Kind           DocumentKind `json:"kind" yaml:"kind"`
	Direction      Direction    `json:"direction" yaml:"direction"`
	Title          string       `json:"title" yaml:"title"`
	Amount         Amount       `json:"amount" yaml:"amount"`
	Currency       string       `json:"currency" yaml:"currency"`
	DayOfMonth     int          `json:"day_of_month" yaml:"day_of_month"`
	IntervalMonths int          `json:"interval_months" yaml:"interval_months"`
	StartDate      Date         `json:"start_date" yaml:"start_date"`
	EndDate        Date         `json:"end_date" yaml:"end_date,omitempty"`
	IsActive       bool         `json:"is_active" yaml:"is_active"`
	CreatedAt      time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" yaml:"updated_at"`
}

// RecurringRuleInsert carries the fields of a new rule.
type RecurringRuleInsert struct {
	Kind           DocumentKind
	Direction      Direction
	Title          string
	Amount         Amount
	Currency       string
	DayOfMonth     int
	IntervalMonths int
	StartDate      Date
	EndDate        Date
	IsActive       bool
}

// Normalize defaults the interval to one month, the day to the start day and
// the currency to defaultCurrency.
func (in RecurringRuleInsert) Normalize(defaultCurrency string) RecurringRuleInsert {
	if in.IntervalMonths == 0 {
		in.IntervalMonths = 1
	}
	if in.DayOfMonth == 0 && !in.StartDate.IsZero() {
		in.DayOfMonth = in.StartDate.Day()
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = defaultCurrency
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = DefaultCurrency
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Title = strings.TrimSpace(in.Title)
	return in
}

// Validate reports every invalid field joined into one error.
func (in RecurringRuleInsert) Validate() error {
	var errs []error
	if !in.Kind.Valid() {
		errs = append(errs, invalid("kind", "unknown kind %q", in.Kind))
	}
	if !in.Direction.Valid() {
		errs = append(errs, invalid("direction", "unknown direction %q", in.Direction))
	}
	if in.Title == "" {
		errs = append(errs, invalid("title", "is required"))
	}
	if in.Amount <= 0 {
		errs = append(errs, invalid("amount", "must be positive, got %s", in.Amount))
	}
	if in.DayOfMonth < 1 || in.DayOfMonth > 31 {
		errs = append(errs, invalid("day_of_month", "must be between 1 and 31, got %d", in.DayOfMonth))
	}
	if in.IntervalMonths < 1 {
		errs = append(errs, invalid("interval_months", "must be at least 1, got %d", in.IntervalMonths))
	}
	if in.StartDate.IsZero() {
		errs = append(errs, invalid("start_date", "is required"))
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		errs = append(errs, invalid("end_date", "%s is before start date %s", in.EndDate, in.StartDate))
	}
	if in.Currency != "" {
		if err := ValidateCurrency(in.Currency); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rule materializes the insert into a record.
func (in RecurringRuleInsert) Rule(id string, now time.Time) RecurringRule {
	return RecurringRule{
		ID:             id,
		Kind:           in.Kind,
		Direction:      in.Direction,
		Title:          in.Title,
		Amount:         in.Amount,
		Currency:       in.Currency,
		DayOfMonth:     in.DayOfMonth,
		IntervalMonths: in.IntervalMonths,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		IsActive:       in.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
