package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

type counterpartyRepo struct{ s *Store }

const counterpartyColumns = `id, name, vat_id, email, phone, address, notes, created_at, updated_at`

func scanCounterparty(sc rowScanner) (ledger.Counterparty, error) {
	var (
		c                    ledger.Counterparty
		createdAt, updatedAt string
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.VATID, &c.Email, &c.Phone, &c.Address, &c.Notes, &createdAt, &updatedAt); err != nil {
		return ledger.Counterparty{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return ledger.Counterparty{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return ledger.Counterparty{}, err
	}
	return c, nil
}

func (r counterpartyRepo) List(ctx context.Context) ([]ledger.Counterparty, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT `+counterpartyColumns+` FROM counterparties ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list counterparties: %w", err)
	}
	defer rows.Close()

	out := []ledger.Counterparty{}
	for rows.Next() {
		c, err := scanCounterparty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan counterparty: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list counterparties: %w", err)
	}
	return out, nil
}

func (r counterpartyRepo) Get(ctx context.Context, id string) (ledger.Counterparty, error) {
	c, err := scanCounterparty(r.s.db.QueryRowContext(ctx, `SELECT `+counterpartyColumns+` FROM counterparties WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Counterparty{}, ledger.NotFound("counterparty", id)
	}
	if err != nil {
		return ledger.Counterparty{}, fmt.Errorf("get counterparty %s: %w", id, err)
	}
	return c, nil
}

func (r counterpartyRepo) Create(ctx context.Context, in ledger.CounterpartyInsert) (ledger.Counterparty, notify.Change, error) {
	if err := in.Validate(); err != nil {
		return ledger.Counterparty{}, notify.Change{}, err
	}
	c := in.Counterparty(r.s.newID(), r.s.timestamp())
	_, err := r.s.db.ExecContext(ctx, `INSERT INTO counterparties (`+counterpartyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.VATID, c.Email, c.Phone, c.Address, c.Notes, timeText(c.CreatedAt), timeText(c.UpdatedAt))
	if err != nil {
		return ledger.Counterparty{}, notify.Change{}, fmt.Errorf("insert counterparty %q: %w", c.Name, err)
	}
	return c, notify.NewChange(notify.Counterparties), nil
}
