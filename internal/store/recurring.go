package store

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

type recurringRepo struct{ s *Store }

func (r recurringRepo) List(ctx context.Context) ([]ledger.RecurringRule, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, kind, direction, title, amount, currency, day_of_month,
		interval_months, start_date, end_date, is_active, created_at, updated_at
		FROM recurring_rules ORDER BY title COLLATE NOCASE ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	defer rows.Close()

	out := []ledger.RecurringRule{}
	for rows.Next() {
		var (
			rule                 ledger.RecurringRule
			amount               int64
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rule.ID, &rule.Kind, &rule.Direction, &rule.Title, &amount, &rule.Currency,
			&rule.DayOfMonth, &rule.IntervalMonths, &rule.StartDate, &rule.EndDate, &rule.IsActive,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		rule.Amount = ledger.Amount(amount)
		if rule.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if rule.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	return out, nil
}

func (r recurringRepo) Create(ctx context.Context, in ledger.RecurringRuleInsert) (ledger.RecurringRule, notify.Change, error) {
	in = in.Normalize(r.s.defaultCurrency)
	if err := in.Validate(); err != nil {
		return ledger.RecurringRule{}, notify.Change{}, err
	}
	rule := in.Rule(r.s.newID(), r.s.timestamp())
	_, err := r.s.db.ExecContext(ctx, `INSERT INTO recurring_rules (id, kind, direction, title, amount, currency,
		day_of_month, interval_months, start_date, end_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Kind, rule.Direction, rule.Title, int64(rule.Amount), rule.Currency, rule.DayOfMonth,
		rule.IntervalMonths, rule.StartDate, rule.EndDate, rule.IsActive,
		timeText(rule.CreatedAt), timeText(rule.UpdatedAt))
	if err != nil {
		return ledger.RecurringRule{}, notify.Change{}, fmt.Errorf("insert recurring rule %q: %w", rule.Title, err)
	}
	return rule, notify.NewChange(notify.Recurring), nil
}

// Delete removes the rule. Documents it generated stay and lose their link.
func (r recurringRepo) Delete(ctx context.Context, id string) (notify.Change, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return notify.Change{}, fmt.Errorf("delete recurring rule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notify.Change{}, ledger.NotFound("recurring rule", id)
	}
	return notify.NewChange(notify.Recurring, notify.Documents), nil
}
