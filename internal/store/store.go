// Package store persists the ledger. Each entity is reached through a narrow
// repository interface; mutations report the collections they touched as a
// notify.Change so callers decide what to refresh.
//
// The shipped implementation keeps everything in one embedded SQLite file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
	"github.com/oakwood-commons/cashbook/pkg/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DocumentFilter narrows document listings. Empty fields do not filter.
type DocumentFilter struct {
	Kind            ledger.DocumentKind
	Status          ledger.DocumentStatus
	Direction       ledger.Direction
	Search          string
	RecurringRuleID string
	DueFrom         ledger.Date
	DueTo           ledger.Date
}

// DocumentRepository reads and writes documents.
type DocumentRepository interface {
	List(ctx context.Context, f DocumentFilter) ([]ledger.DocumentEnhanced, error)
	Get(ctx context.Context, id string) (ledger.DocumentEnhanced, error)
	Create(ctx context.Context, in ledger.DocumentInsert) (ledger.Document, notify.Change, error)
	CreateBatch(ctx context.Context, ins []ledger.DocumentInsert) ([]ledger.Document, notify.Change, error)
	Update(ctx context.Context, u ledger.DocumentUpdate) (ledger.Document, notify.Change, error)
	Delete(ctx context.Context, id string) (notify.Change, error)
	MarkOverdue(ctx context.Context, today ledger.Date) (int, notify.Change, error)
}

// PaymentRepository reads and writes payments. Creating or deleting a
// payment recomputes the status of its document.
type PaymentRepository interface {
	ListByDocument(ctx context.Context, documentID string) ([]ledger.Payment, error)
	Create(ctx context.Context, in ledger.PaymentInsert) (ledger.Payment, notify.Change, error)
	Delete(ctx context.Context, id string) (notify.Change, error)
}

// CounterpartyRepository reads and writes counterparties.
type CounterpartyRepository interface {
	List(ctx context.Context) ([]ledger.Counterparty, error)
	Get(ctx context.Context, id string) (ledger.Counterparty, error)
	Create(ctx context.Context, in ledger.CounterpartyInsert) (ledger.Counterparty, notify.Change, error)
}

// RecurringRepository reads and writes recurring rules.
type RecurringRepository interface {
	List(ctx context.Context) ([]ledger.RecurringRule, error)
	Create(ctx context.Context, in ledger.RecurringRuleInsert) (ledger.RecurringRule, notify.Change, error)
	Delete(ctx context.Context, id string) (notify.Change, error)
}

// CashflowRepository projects open documents onto their due dates.
type CashflowRepository interface {
	Events(ctx context.Context, from, to ledger.Date) ([]ledger.CashflowEvent, error)
}

// ColumnRepository reads and writes the per-table column configuration.
type ColumnRepository interface {
	List(ctx context.Context, table string) ([]ledger.TableColumn, error)
	ListAll(ctx context.Context, table string) ([]ledger.TableColumn, error)
	Seed(ctx context.Context, cols []ledger.TableColumn) (int, notify.Change, error)
	SetActive(ctx context.Context, table, columnID string, active bool) (notify.Change, error)
}

// Store is the SQLite backed implementation of every repository.
type Store struct {
	db              *sql.DB
	path            string
	now             func() time.Time
	newID           func() string
	defaultCurrency string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator for record ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithDefaultCurrency sets the currency of records created without one.
func WithDefaultCurrency(code string) Option {
	return func(s *Store) { s.defaultCurrency = code }
}

// Open opens (creating if needed) the database at path and migrates it.
// MemoryPath gives a throwaway database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	lgr := logger.FromContext(ctx)

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// One connection keeps pragmas and in-memory databases consistent and
	// serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:              db,
		path:            path,
		now:             time.Now,
		newID:           uuid.NewString,
		defaultCurrency: ledger.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := migrate(ctx, db, path == MemoryPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	lgr.V(1).Info("database ready", "path", path)
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Documents returns the document repository.
func (s *Store) Documents() DocumentRepository { return documentRepo{s} }

// Payments returns the payment repository.
func (s *Store) Payments() PaymentRepository { return paymentRepo{s} }

// Counterparties returns the counterparty repository.
func (s *Store) Counterparties() CounterpartyRepository { return counterpartyRepo{s} }

// Recurring returns the recurring rule repository.
func (s *Store) Recurring() RecurringRepository { return recurringRepo{s} }

// Cashflow returns the cashflow repository.
func (s *Store) Cashflow() CashflowRepository { return cashflowRepo{s} }

// Columns returns the column configuration repository.
func (s *Store) Columns() ColumnRepository { return columnRepo{s} }

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func timeText(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullAmount(a *ledger.Amount) any {
	if a == nil {
		return nil
	}
	return int64(*a)
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
