package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

type columnRepo struct{ s *Store }

func (r columnRepo) query(ctx context.Context, table string, activeOnly bool) ([]ledger.TableColumn, error) {
	q := `SELECT id, table_name, column_id, label, priority, accessor, align, width, min_screen_width,
		is_sortable, is_active, display_order FROM table_columns WHERE table_name = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY display_order ASC, column_id ASC`

	rows, err := r.s.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer rows.Close()

	out := []ledger.TableColumn{}
	for rows.Next() {
		var c ledger.TableColumn
		if err := rows.Scan(&c.ID, &c.TableName, &c.ColumnID, &c.Label, &c.Priority, &c.Accessor, &c.Align,
			&c.Width, &c.MinScreenWidth, &c.IsSortable, &c.IsActive, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	return out, nil
}

// List returns the active columns of table in display order.
func (r columnRepo) List(ctx context.Context, table string) ([]ledger.TableColumn, error) {
	return r.query(ctx, table, true)
}

// ListAll returns every column of table, inactive ones included.
func (r columnRepo) ListAll(ctx context.Context, table string) ([]ledger.TableColumn, error) {
	return r.query(ctx, table, false)
}

// Seed inserts the columns that do not exist yet and reports how many were added.
func (r columnRepo) Seed(ctx context.Context, cols []ledger.TableColumn) (int, notify.Change, error) {
	added := 0
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range cols {
			id := c.ID
			if id == "" {
				id = c.TableName + "." + c.ColumnID
			}
			res, err := tx.ExecContext(ctx, `INSERT INTO table_columns (id, table_name, column_id, label, priority,
				accessor, align, width, min_screen_width, is_sortable, is_active, display_order)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT DO NOTHING`,
				id, c.TableName, c.ColumnID, c.Label, c.Priority, c.Accessor, c.Align, c.Width,
				c.MinScreenWidth, c.IsSortable, c.IsActive, c.DisplayOrder)
			if err != nil {
				return fmt.Errorf("seed column %s.%s: %w", c.TableName, c.ColumnID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, notify.Change{}, err
	}
	if added == 0 {
		return 0, notify.Change{}, nil
	}
	return added, notify.NewChange(notify.TableColumns), nil
}

// SetActive shows or hides a column.
func (r columnRepo) SetActive(ctx context.Context, table, columnID string, active bool) (notify.Change, error) {
	res, err := r.s.db.ExecContext(ctx, `UPDATE table_columns SET is_active = ? WHERE table_name = ? AND column_id = ?`,
		active, table, columnID)
	if err != nil {
		return notify.Change{}, fmt.Errorf("update column %s.%s: %w", table, columnID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notify.Change{}, ledger.NotFound("column", table+"."+columnID)
	}
	return notify.NewChange(notify.TableColumns), nil
}
