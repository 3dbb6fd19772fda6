package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

type documentRepo struct{ s *Store }

const paymentTotals = `SELECT document_id, SUM(amount) AS total, MAX(paid_date) AS latest
	FROM payments GROUP BY document_id`

const documentColumns = `d.id, d.kind, d.direction, d.status, d.number, d.title, d.counterparty,
	COALESCE(d.counterparty_id, ''), d.receipt_form, d.issue_date, d.due_date, d.amount_net,
	d.amount_gross, d.currency, d.notes, COALESCE(d.recurring_rule_id, ''), d.created_at, d.updated_at`

const enhancedSelect = `SELECT ` + documentColumns + `,
	COALESCE(c.name, ''), COALESCE(c.vat_id, ''), p.latest, COALESCE(p.total, 0)
	FROM documents d
	LEFT JOIN counterparties c ON c.id = d.counterparty_id
	LEFT JOIN (` + paymentTotals + `) p ON p.document_id = d.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentInto(sc rowScanner, d *ledger.Document, extra ...any) error {
	var (
		net       sql.NullInt64
		gross     int64
		createdAt string
		updatedAt string
	)
	dest := []any{
		&d.ID, &d.Kind, &d.Direction, &d.Status, &d.Number, &d.Title, &d.Counterparty,
		&d.CounterpartyID, &d.ReceiptForm, &d.IssueDate, &d.DueDate, &net,
		&gross, &d.Currency, &d.Notes, &d.RecurringRuleID, &createdAt, &updatedAt,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if net.Valid {
		a := ledger.Amount(net.Int64)
		d.AmountNet = &a
	}
	d.AmountGross = ledger.Amount(gross)
	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return err
	}
	return nil
}

func scanEnhanced(sc rowScanner) (ledger.DocumentEnhanced, error) {
	var (
		e    ledger.DocumentEnhanced
		paid int64
	)
	if err := scanDocumentInto(sc, &e.Document, &e.CounterpartyName, &e.CounterpartyVATID, &e.LatestPaymentDate, &paid); err != nil {
		return ledger.DocumentEnhanced{}, err
	}
	e.TotalPaid = ledger.Amount(paid)
	return e, nil
}

func (r documentRepo) List(ctx context.Context, f DocumentFilter) ([]ledger.DocumentEnhanced, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "d.kind = ?")
		args = append(args, f.Kind)
	}
	if f.Status != "" {
		where = append(where, "d.status = ?")
		args = append(args, f.Status)
	}
	if f.Direction != "" {
		where = append(where, "d.direction = ?")
		args = append(args, f.Direction)
	}
	if f.RecurringRuleID != "" {
		where = append(where, "d.recurring_rule_id = ?")
		args = append(args, f.RecurringRuleID)
	}
	if !f.DueFrom.IsZero() {
		where = append(where, "d.due_date >= ?")
		args = append(args, f.DueFrom)
	}
	if !f.DueTo.IsZero() {
		where = append(where, "d.due_date <= ?")
		args = append(args, f.DueTo)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		where = append(where, `(LOWER(d.title) LIKE ? ESCAPE '\' OR LOWER(d.number) LIKE ? ESCAPE '\'
			OR LOWER(d.counterparty) LIKE ? ESCAPE '\' OR LOWER(COALESCE(c.name, '')) LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p, p)
	}

	q := enhancedSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY d.due_date ASC, d.created_at ASC, d.id ASC"

	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []ledger.DocumentEnhanced{}
	for rows.Next() {
		d, err := scanEnhanced(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (r documentRepo) Get(ctx context.Context, id string) (ledger.DocumentEnhanced, error) {
	row := r.s.db.QueryRowContext(ctx, enhancedSelect+" WHERE d.id = ?", id)
	d, err := scanEnhanced(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.DocumentEnhanced{}, ledger.NotFound("document", id)
	}
	if err != nil {
		return ledger.DocumentEnhanced{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return d, nil
}

func getDocumentTx(ctx context.Context, tx *sql.Tx, id string) (ledger.Document, error) {
	var d ledger.Document
	row := tx.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents d WHERE d.id = ?", id)
	if err := scanDocumentInto(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Document{}, ledger.NotFound("document", id)
		}
		return ledger.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return d, nil
}

const insertDocument = `INSERT INTO documents (id, kind, direction, status, number, title, counterparty,
	counterparty_id, receipt_form, issue_date, due_date, amount_net, amount_gross, currency, notes,
	recurring_rule_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT DO NOTHING`

func documentArgs(d ledger.Document) []any {
	return []any{
		d.ID, d.Kind, d.Direction, d.Status, d.Number, d.Title, d.Counterparty,
		nullString(d.CounterpartyID), d.ReceiptForm, d.IssueDate, d.DueDate, nullAmount(d.AmountNet),
		int64(d.AmountGross), d.Currency, d.Notes, nullString(d.RecurringRuleID),
		timeText(d.CreatedAt), timeText(d.UpdatedAt),
	}
}

func (r documentRepo) prepare(in ledger.DocumentInsert) (ledger.Document, error) {
	in = in.Normalize(r.s.defaultCurrency)
	if err := in.Validate(); err != nil {
		return ledger.Document{}, err
	}
	return in.Document(r.s.newID(), r.s.timestamp()), nil
}

func (r documentRepo) Create(ctx context.Context, in ledger.DocumentInsert) (ledger.Document, notify.Change, error) {
	docs, change, err := r.CreateBatch(ctx, []ledger.DocumentInsert{in})
	if err != nil {
		return ledger.Document{}, notify.Change{}, err
	}
	if len(docs) == 0 {
		return ledger.Document{}, notify.Change{}, fmt.Errorf("%w: document for rule %s on %s already exists",
			ledger.ErrValidation, in.RecurringRuleID, in.DueDate)
	}
	return docs[0], change, nil
}

// CreateBatch inserts every document in one transaction. Documents that
// repeat an existing recurring occurrence are skipped and not returned.
func (r documentRepo) CreateBatch(ctx context.Context, ins []ledger.DocumentInsert) ([]ledger.Document, notify.Change, error) {
	docs := make([]ledger.Document, 0, len(ins))
	for i, in := range ins {
		d, err := r.prepare(in)
		if err != nil {
			if len(ins) > 1 {
				return nil, notify.Change{}, fmt.Errorf("document %d: %w", i+1, err)
			}
			return nil, notify.Change{}, err
		}
		docs = append(docs, d)
	}

	created := make([]ledger.Document, 0, len(docs))
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		for _, d := range docs {
			res, err := tx.ExecContext(ctx, insertDocument, documentArgs(d)...)
			if err != nil {
				return fmt.Errorf("insert document %q: %w", d.Title, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				created = append(created, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, notify.Change{}, err
	}

	if len(created) == 0 {
		return created, notify.Change{}, nil
	}
	cols := []notify.Collection{notify.Documents, notify.Cashflow}
	for _, d := range created {
		cols = append(cols, notify.Document(d.ID))
	}
	return created, notify.NewChange(cols...), nil
}

func (r documentRepo) Update(ctx context.Context, u ledger.DocumentUpdate) (ledger.Document, notify.Change, error) {
	var updated ledger.Document
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getDocumentTx(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		updated, err = u.Apply(current, r.s.timestamp())
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE documents SET kind = ?, direction = ?, status = ?, number = ?,
			title = ?, counterparty = ?, receipt_form = ?, issue_date = ?, due_date = ?, amount_net = ?,
			amount_gross = ?, currency = ?, notes = ?, updated_at = ? WHERE id = ?`,
			updated.Kind, updated.Direction, updated.Status, updated.Number, updated.Title,
			updated.Counterparty, updated.ReceiptForm, updated.IssueDate, updated.DueDate,
			nullAmount(updated.AmountNet), int64(updated.AmountGross), updated.Currency, updated.Notes,
			timeText(updated.UpdatedAt), updated.ID)
		if err != nil {
			return fmt.Errorf("update document %s: %w", u.ID, err)
		}
		if u.AmountGross != nil {
			return settleTx(ctx, tx, updated.ID, &updated)
		}
		return nil
	})
	if err != nil {
		return ledger.Document{}, notify.Change{}, err
	}
	return updated, notify.NewChange(notify.Documents, notify.Document(updated.ID), notify.Cashflow), nil
}

func (r documentRepo) Delete(ctx context.Context, id string) (notify.Change, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return notify.Change{}, fmt.Errorf("delete document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notify.Change{}, ledger.NotFound("document", id)
	}
	return notify.NewChange(notify.Documents, notify.Document(id), notify.Payments(id), notify.Cashflow), nil
}

// MarkOverdue flags issued and partly paid documents due before today.
func (r documentRepo) MarkOverdue(ctx context.Context, today ledger.Date) (int, notify.Change, error) {
	var ids []string
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM documents
			WHERE status IN (?, ?) AND due_date < ?`, ledger.StatusIssued, ledger.StatusPartial, today)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
				ledger.StatusOverdue, timeText(r.s.timestamp()), id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, notify.Change{}, fmt.Errorf("mark overdue documents: %w", err)
	}
	if len(ids) == 0 {
		return 0, notify.Change{}, nil
	}
	cols := []notify.Collection{notify.Documents, notify.Cashflow}
	for _, id := range ids {
		cols = append(cols, notify.Document(id))
	}
	return len(ids), notify.NewChange(cols...), nil
}

// settleTx recomputes the status of document id from its payments. When doc
// is not nil it receives the new status.
func settleTx(ctx context.Context, tx *sql.Tx, id string, doc *ledger.Document) error {
	var (
		status ledger.DocumentStatus
		gross  int64
		paid   int64
	)
	err := tx.QueryRowContext(ctx, `SELECT d.status, d.amount_gross,
		COALESCE((SELECT SUM(amount) FROM payments WHERE document_id = d.id), 0)
		FROM documents d WHERE d.id = ?`, id).Scan(&status, &gross, &paid)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.NotFound("document", id)
	}
	if err != nil {
		return fmt.Errorf("read payment totals of %s: %w", id, err)
	}

	next := ledger.SettleStatus(status, ledger.Amount(gross), ledger.Amount(paid))
	if doc != nil {
		doc.Status = next
	}
	if next == status {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET status = ? WHERE id = ?`, next, id); err != nil {
		return fmt.Errorf("update status of %s: %w", id, err)
	}
	return nil
}
