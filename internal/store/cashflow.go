package store

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/cashbook/internal/ledger"
)

type cashflowRepo struct{ s *Store }

// Events returns the open remainder of every non-cancelled document due
// within [from, to], ordered by date and title.
func (r cashflowRepo) Events(ctx context.Context, from, to ledger.Date) ([]ledger.CashflowEvent, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT d.id, d.due_date, d.title, d.direction, d.kind, d.status,
		d.amount_gross, COALESCE(p.total, 0), d.currency
		FROM documents d
		LEFT JOIN (`+paymentTotals+`) p ON p.document_id = d.id
		WHERE d.status != ? AND d.due_date >= ? AND d.due_date <= ?
			AND d.amount_gross - COALESCE(p.total, 0) > 0
		ORDER BY d.due_date ASC, d.title ASC, d.id ASC`,
		ledger.StatusCancelled, from, to)
	if err != nil {
		return nil, fmt.Errorf("list cashflow events: %w", err)
	}
	defer rows.Close()

	events := []ledger.CashflowEvent{}
	for rows.Next() {
		var (
			e           ledger.CashflowEvent
			gross, paid int64
		)
		if err := rows.Scan(&e.DocumentID, &e.EventDate, &e.Title, &e.Direction, &e.Kind, &e.Status,
			&gross, &paid, &e.Currency); err != nil {
			return nil, fmt.Errorf("scan cashflow event: %w", err)
		}
		e.Amount = ledger.Amount(gross)
		e.PaidAmount = ledger.Amount(paid)
		e.Remaining = e.Amount - e.PaidAmount
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cashflow events: %w", err)
	}
	return events, nil
}
