package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`PRAGMA foreign_keys=ON;`,
	`CREATE TABLE IF NOT EXISTS counterparties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		vat_id TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS recurring_rules (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		direction TEXT NOT NULL,
		title TEXT NOT NULL,
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL,
		day_of_month INTEGER NOT NULL,
		interval_months INTEGER NOT NULL DEFAULT 1,
		start_date TEXT NOT NULL,
		end_date TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		counterparty TEXT NOT NULL DEFAULT '',
		counterparty_id TEXT REFERENCES counterparties(id) ON DELETE SET NULL,
		receipt_form TEXT NOT NULL DEFAULT '',
		issue_date TEXT,
		due_date TEXT NOT NULL,
		amount_net INTEGER,
		amount_gross INTEGER NOT NULL,
		currency TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		recurring_rule_id TEXT REFERENCES recurring_rules(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS documents_due_date ON documents(due_date);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS documents_rule_occurrence
		ON documents(recurring_rule_id, due_date) WHERE recurring_rule_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		paid_date TEXT NOT NULL,
		amount INTEGER NOT NULL,
		method TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS payments_document ON payments(document_id);`,
	`CREATE TABLE IF NOT EXISTS table_columns (
		id TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		column_id TEXT NOT NULL,
		label TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		accessor TEXT NOT NULL DEFAULT '',
		align TEXT NOT NULL DEFAULT 'left',
		width TEXT NOT NULL DEFAULT '',
		min_screen_width INTEGER NOT NULL DEFAULT 0,
		is_sortable INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		display_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE(table_name, column_id)
	);`,
}

func migrate(ctx context.Context, db *sql.DB, inMemory bool) error {
	statements := schema
	if !inMemory {
		statements = append([]string{`PRAGMA journal_mode=WAL;`}, schema...)
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
	}
	return nil
}
