package recurring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

func dates(ds []ledger.Date) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

func rule(day, interval int, start, end string) ledger.RecurringRule {
	r := ledger.RecurringRule{
		ID:             "rule-1",
		Kind:           ledger.KindStandingOrder,
		Direction:      ledger.DirectionOut,
		Title:          "Rent",
		Amount:         300000,
		Currency:       "PLN",
		DayOfMonth:     day,
		IntervalMonths: interval,
		StartDate:      ledger.MustDate(start),
		IsActive:       true,
	}
	if end != "" {
		r.EndDate = ledger.MustDate(end)
	}
	return r
}

func TestOccurrences(t *testing.T) {
	tests := []struct {
		name     string
		rule     ledger.RecurringRule
		from, to string
		want     []string
	}{
		{
			name: "monthly",
			rule: rule(10, 1, "2025-01-10", ""),
			from: "2025-01-01", to: "2025-04-30",
			want: []string{"2025-01-10", "2025-02-10", "2025-03-10", "2025-04-10"},
		},
		{
			name: "window starts after start date",
			rule: rule(10, 1, "2024-06-10", ""),
			from: "2025-03-11", to: "2025-05-10",
			want: []string{"2025-04-10", "2025-05-10"},
		},
		{
			name: "quarterly",
			rule: rule(15, 3, "2025-01-15", ""),
			from: "2025-01-01", to: "2025-12-31",
			want: []string{"2025-01-15", "2025-04-15", "2025-07-15", "2025-10-15"},
		},
		{
			name: "day 31 clamps to month end",
			rule: rule(31, 1, "2025-01-31", ""),
			from: "2025-01-01", to: "2025-04-30",
			want: []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"},
		},
		{
			name: "day 30 in leap february",
			rule: rule(30, 1, "2024-01-30", ""),
			from: "2024-01-01", to: "2024-03-31",
			want: []string{"2024-01-30", "2024-02-29", "2024-03-30"},
		},
		{
			name: "end date is inclusive",
			rule: rule(5, 1, "2025-01-05", "2025-03-05"),
			from: "2025-01-01", to: "2025-12-31",
			want: []string{"2025-01-05", "2025-02-05", "2025-03-05"},
		},
		{
			name: "day defaults to start day",
			rule: rule(0, 0, "2025-02-07", ""),
			from: "2025-02-01", to: "2025-03-31",
			want: []string{"2025-02-07", "2025-03-07"},
		},
		{
			name: "inverted window",
			rule: rule(5, 1, "2025-01-05", ""),
			from: "2025-03-01", to: "2025-01-01",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Occurrences(tt.rule, ledger.MustDate(tt.from), ledger.MustDate(tt.to))
			require.NoError(t, err)
			assert.Equal(t, tt.want, dates(got))
		})
	}
}

func TestRRuleRequiresStart(t *testing.T) {
	_, err := RRule(ledger.RecurringRule{Title: "x"})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestPlan(t *testing.T) {
	active := rule(10, 1, "2025-01-10", "")
	inactive := rule(12, 1, "2025-01-12", "")
	inactive.ID = "rule-2"
	inactive.IsActive = false

	existing := []ledger.Document{
		{RecurringRuleID: "rule-1", DueDate: ledger.MustDate("2025-03-10")},
		{DueDate: ledger.MustDate("2025-04-10")},
	}

	planned, err := Plan([]ledger.RecurringRule{active, inactive}, existing,
		ledger.MustDate("2025-03-01"), ledger.MustDate("2025-05-31"))
	require.NoError(t, err)
	require.Len(t, planned, 2)

	assert.Equal(t, "2025-04-10", planned[0].DueDate.String())
	assert.Equal(t, "2025-05-10", planned[1].DueDate.String())
	for _, in := range planned {
		assert.Equal(t, ledger.StatusPlanned, in.Status)
		assert.Equal(t, "rule-1", in.RecurringRuleID)
		assert.Equal(t, ledger.Amount(300000), in.AmountGross)
		assert.Equal(t, "Rent", in.Title)
		assert.NoError(t, in.Normalize("PLN").Validate())
	}
}

type fakeCreator struct {
	got []ledger.DocumentInsert
	err error
}

func (f *fakeCreator) CreateBatch(_ context.Context, ins []ledger.DocumentInsert) ([]ledger.Document, notify.Change, error) {
	if f.err != nil {
		return nil, notify.Change{}, f.err
	}
	f.got = append(f.got, ins...)
	docs := make([]ledger.Document, len(ins))
	return docs, notify.NewChange(notify.Documents, notify.Cashflow), nil
}

func TestMaterialize(t *testing.T) {
	today := ledger.MustDate("2025-03-01")
	rules := []ledger.RecurringRule{rule(10, 1, "2025-01-10", "")}

	c := &fakeCreator{}
	n, change, err := Materialize(context.Background(), c, rules, nil, today, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, change.Touches(notify.Documents))

	t.Run("nothing left to create", func(t *testing.T) {
		existing := make([]ledger.Document, 0, len(c.got))
		for _, in := range c.got {
			existing = append(existing, ledger.Document{RecurringRuleID: in.RecurringRuleID, DueDate: in.DueDate})
		}
		c2 := &fakeCreator{}
		n, change, err := Materialize(context.Background(), c2, rules, existing, today, 0)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.True(t, change.Empty())
		assert.Empty(t, c2.got)
	})

	t.Run("creator error", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := Materialize(context.Background(), &fakeCreator{err: boom}, rules, nil, today, 30)
		assert.ErrorIs(t, err, boom)
	})
}

func TestNextOccurrence(t *testing.T) {
	r := rule(10, 1, "2025-01-10", "2025-03-10")

	next, ok, err := NextOccurrence(r, ledger.MustDate("2025-02-10"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-02-10", next.String())

	next, ok, err = NextOccurrence(r, ledger.MustDate("2025-02-11"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", next.String())

	_, ok, err = NextOccurrence(r, ledger.MustDate("2025-03-11"))
	require.NoError(t, err)
	assert.False(t, ok)
}
