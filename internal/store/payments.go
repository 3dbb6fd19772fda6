package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

type paymentRepo struct{ s *Store }

func paymentChange(documentID string) notify.Change {
	return notify.NewChange(notify.Payments(documentID), notify.Documents, notify.Document(documentID), notify.Cashflow)
}

func (r paymentRepo) ListByDocument(ctx context.Context, documentID string) ([]ledger.Payment, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, document_id, paid_date, amount, method, note, created_at
		FROM payments WHERE document_id = ? ORDER BY paid_date ASC, created_at ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list payments of %s: %w", documentID, err)
	}
	defer rows.Close()

	payments := []ledger.Payment{}
	for rows.Next() {
		var (
			p         ledger.Payment
			amount    int64
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.PaidDate, &amount, &p.Method, &p.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = ledger.Amount(amount)
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments of %s: %w", documentID, err)
	}
	return payments, nil
}

func (r paymentRepo) Create(ctx context.Context, in ledger.PaymentInsert) (ledger.Payment, notify.Change, error) {
	in = in.Normalize(ledger.DateOf(r.s.now()))
	if err := in.Validate(); err != nil {
		return ledger.Payment{}, notify.Change{}, err
	}
	p := in.Payment(r.s.newID(), r.s.timestamp())

	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		doc, err := getDocumentTx(ctx, tx, p.DocumentID)
		if err != nil {
			return err
		}
		if doc.Status == ledger.StatusCancelled {
			return fmt.Errorf("%w: document %s is cancelled", ledger.ErrValidation, doc.ID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO payments (id, document_id, paid_date, amount, method, note, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.DocumentID, p.PaidDate, int64(p.Amount), p.Method, p.Note, timeText(p.CreatedAt)); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return settleTx(ctx, tx, p.DocumentID, nil)
	})
	if err != nil {
		return ledger.Payment{}, notify.Change{}, err
	}
	return p, paymentChange(p.DocumentID), nil
}

func (r paymentRepo) Delete(ctx context.Context, id string) (notify.Change, error) {
	var documentID string
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT document_id FROM payments WHERE id = ?`, id).Scan(&documentID)
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.NotFound("payment", id)
		}
		if err != nil {
			return fmt.Errorf("get payment %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete payment %s: %w", id, err)
		}
		return settleTx(ctx, tx, documentID, nil)
	})
	if err != nil {
		return notify.Change{}, err
	}
	return paymentChange(documentID), nil
}
