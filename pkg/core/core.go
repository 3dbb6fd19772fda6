// Package core is the cashbook engine: it wires the repositories, the
// change hub and query cache, the column registry, the recurring
// materializer and the cashflow projection behind one API.
package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/cashbook/internal/cashflow"
	"github.com/oakwood-commons/cashbook/internal/filter"
	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
	"github.com/oakwood-commons/cashbook/internal/recurring"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/internal/store"
	"github.com/oakwood-commons/cashbook/pkg/columns"
	"github.com/oakwood-commons/cashbook/pkg/logger"
)

// DefaultCacheTTL bounds how long query results are reused without a change.
const DefaultCacheTTL = registry.DefaultTTL

// Backend is the set of repositories the engine runs on. *store.Store
// implements it.
type Backend interface {
	Documents() store.DocumentRepository
	Payments() store.PaymentRepository
	Counterparties() store.CounterpartyRepository
	Recurring() store.RecurringRepository
	Cashflow() store.CashflowRepository
	Columns() store.ColumnRepository
	Close() error
}

// Engine provides the shared API for the CLI and the TUI.
type Engine struct {
	backend     Backend
	hub         *notify.Hub
	cache       *notify.Cache
	registry    *registry.Registry
	overrides   registry.Overrides
	horizonDays int
	today       func() ledger.Date
	log         logr.Logger
	hasLog      bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithHub shares a notification hub, e.g. with a TUI that refreshes on changes.
func WithHub(h *notify.Hub) Option {
	return func(e *Engine) {
		if h != nil {
			e.hub = h
		}
	}
}

// WithCache shares a query cache.
func WithCache(c *notify.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithOverrides applies configured column overrides.
func WithOverrides(o registry.Overrides) Option {
	return func(e *Engine) { e.overrides = o }
}

// WithHorizonDays sets how far ahead recurring rules are materialized and
// cashflow is projected.
func WithHorizonDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.horizonDays = days
		}
	}
}

// WithToday replaces the clock used for overdue marking and windows.
func WithToday(today func() ledger.Date) Option {
	return func(e *Engine) {
		if today != nil {
			e.today = today
		}
	}
}

// WithLogger sets the logger; by default the one in the context is used.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.log = lgr
		e.hasLog = true
	}
}

// New wires an engine over backend and seeds the built-in column sets.
func New(ctx context.Context, backend Backend, opts ...Option) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is not configured")
	}
	e := &Engine{
		backend:     backend,
		hub:         notify.NewHub(notify.DefaultBuffer),
		cache:       notify.NewCache(DefaultCacheTTL),
		horizonDays: recurring.DefaultHorizonDays,
		today:       ledger.Today,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.hasLog {
		e.log = *logger.FromContext(ctx)
	}
	e.registry = registry.New(backend.Columns(), registry.WithCache(e.cache), registry.WithOverrides(e.overrides))

	added, change, err := backend.Columns().Seed(ctx, registry.AllDefaults())
	if err != nil {
		return nil, fmt.Errorf("seed columns: %w", err)
	}
	if added > 0 {
		e.log.V(1).Info("seeded columns", logger.CountKey, added)
	}
	e.commit(change)
	return e, nil
}

// Open opens the SQLite database at path and wires an engine over it.
func Open(ctx context.Context, path string, storeOpts []store.Option, opts ...Option) (*Engine, error) {
	st, err := store.Open(ctx, path, storeOpts...)
	if err != nil {
		return nil, err
	}
	e, err := New(ctx, st, opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the backend.
func (e *Engine) Close() error {
	if e == nil || e.backend == nil {
		return nil
	}
	return e.backend.Close()
}

// Hub returns the hub every mutation is published on.
func (e *Engine) Hub() *notify.Hub { return e.hub }

// Today returns the engine's current day.
func (e *Engine) Today() ledger.Date { return e.today() }

// HorizonDays returns the configured projection horizon.
func (e *Engine) HorizonDays() int { return e.horizonDays }

// Subscribe is shorthand for Hub().Subscribe.
func (e *Engine) Subscribe(patterns ...notify.Collection) (<-chan Change, func()) {
	return e.hub.Subscribe(patterns...)
}

// Change is re-exported so callers of Subscribe need not import notify.
type Change = notify.Change

// commit drops stale cache entries before telling subscribers, so a
// subscriber that reloads sees fresh data.
func (e *Engine) commit(change notify.Change) {
	if change.Empty() {
		return
	}
	e.cache.Invalidate(change)
	e.hub.Publish(change)
	e.log.V(2).Info("change published", logger.CollectionsKey, change.Collections)
}

// Columns returns the descriptors of a registered table.
func (e *Engine) Columns(ctx context.Context, table string) ([]columns.Descriptor, error) {
	return e.registry.Columns(ctx, table)
}

// ColumnRows returns every configured column of table, hidden ones included.
func (e *Engine) ColumnRows(ctx context.Context, table string) ([]ledger.TableColumn, error) {
	return e.backend.Columns().ListAll(ctx, table)
}

// SetColumnActive shows or hides a column.
func (e *Engine) SetColumnActive(ctx context.Context, table, columnID string, active bool) error {
	change, err := e.backend.Columns().SetActive(ctx, table, columnID, active)
	if err != nil {
		return err
	}
	e.commit(change)
	return nil
}

// DocumentQuery selects documents. Filter runs in the store; Where and
// Fuzzy narrow the result afterwards, fuzzy ranking last.
type DocumentQuery struct {
	Filter store.DocumentFilter
	Where  string
	Fuzzy  string
}

// Documents lists documents matching q.
func (e *Engine) Documents(ctx context.Context, q DocumentQuery) ([]ledger.DocumentEnhanced, error) {
	var where *filter.Where
	if q.Where != "" {
		w, err := filter.CompileWhere(q.Where)
		if err != nil {
			return nil, err
		}
		where = w
	}

	docs, err := notify.GetOrLoad(e.cache, notify.Documents, fmt.Sprintf("%+v", q.Filter),
		func() ([]ledger.DocumentEnhanced, error) {
			return e.backend.Documents().List(ctx, q.Filter)
		})
	if err != nil {
		return nil, err
	}
	docs = slices.Clone(docs)

	if where != nil {
		if docs, err = where.Apply(docs); err != nil {
			return nil, err
		}
	}
	return filter.Fuzzy(q.Fuzzy, docs), nil
}

// Document returns one document with its counterparty and payment totals.
func (e *Engine) Document(ctx context.Context, id string) (ledger.DocumentEnhanced, error) {
	return notify.GetOrLoad(e.cache, notify.Document(id), id, func() (ledger.DocumentEnhanced, error) {
		return e.backend.Documents().Get(ctx, id)
	})
}

// CreateDocument stores a new document.
func (e *Engine) CreateDocument(ctx context.Context, in ledger.DocumentInsert) (ledger.Document, error) {
	d, change, err := e.backend.Documents().Create(ctx, in)
	if err != nil {
		return ledger.Document{}, err
	}
	e.commit(change)
	e.log.V(1).Info("document created", logger.DocumentKey, d.ID)
	return d, nil
}

// ImportDocuments stores a batch atomically.
func (e *Engine) ImportDocuments(ctx context.Context, ins []ledger.DocumentInsert) ([]ledger.Document, error) {
	docs, change, err := e.backend.Documents().CreateBatch(ctx, ins)
	if err != nil {
		return nil, err
	}
	e.commit(change)
	e.log.V(1).Info("documents imported", logger.CountKey, len(docs))
	return docs, nil
}

// UpdateDocument applies the set fields of u.
func (e *Engine) UpdateDocument(ctx context.Context, u ledger.DocumentUpdate) (ledger.Document, error) {
	d, change, err := e.backend.Documents().Update(ctx, u)
	if err != nil {
		return ledger.Document{}, err
	}
	e.commit(change)
	return d, nil
}

// DeleteDocument removes a document and its payments.
func (e *Engine) DeleteDocument(ctx context.Context, id string) error {
	change, err := e.backend.Documents().Delete(ctx, id)
	if err != nil {
		return err
	}
	e.commit(change)
	return nil
}

// Payments lists the payments of a document.
func (e *Engine) Payments(ctx context.Context, documentID string) ([]ledger.Payment, error) {
	return notify.GetOrLoad(e.cache, notify.Payments(documentID), documentID, func() ([]ledger.Payment, error) {
		return e.backend.Payments().ListByDocument(ctx, documentID)
	})
}

// AddPayment records a payment and recomputes the document status.
func (e *Engine) AddPayment(ctx context.Context, in ledger.PaymentInsert) (ledger.Payment, error) {
	p, change, err := e.backend.Payments().Create(ctx, in)
	if err != nil {
		return ledger.Payment{}, err
	}
	e.commit(change)
	return p, nil
}

// DeletePayment removes a payment and recomputes the document status.
func (e *Engine) DeletePayment(ctx context.Context, id string) error {
	change, err := e.backend.Payments().Delete(ctx, id)
	if err != nil {
		return err
	}
	e.commit(change)
	return nil
}

// Counterparties lists counterparties by name.
func (e *Engine) Counterparties(ctx context.Context) ([]ledger.Counterparty, error) {
	return notify.GetOrLoad(e.cache, notify.Counterparties, "", func() ([]ledger.Counterparty, error) {
		return e.backend.Counterparties().List(ctx)
	})
}

// AddCounterparty stores a counterparty.
func (e *Engine) AddCounterparty(ctx context.Context, in ledger.CounterpartyInsert) (ledger.Counterparty, error) {
	c, change, err := e.backend.Counterparties().Create(ctx, in)
	if err != nil {
		return ledger.Counterparty{}, err
	}
	e.commit(change)
	return c, nil
}

// RecurringRules lists recurring rules by title.
func (e *Engine) RecurringRules(ctx context.Context) ([]ledger.RecurringRule, error) {
	return notify.GetOrLoad(e.cache, notify.Recurring, "", func() ([]ledger.RecurringRule, error) {
		return e.backend.Recurring().List(ctx)
	})
}

// AddRecurringRule stores a rule. Its documents appear on the next Materialize.
func (e *Engine) AddRecurringRule(ctx context.Context, in ledger.RecurringRuleInsert) (ledger.RecurringRule, error) {
	r, change, err := e.backend.Recurring().Create(ctx, in)
	if err != nil {
		return ledger.RecurringRule{}, err
	}
	e.commit(change)
	return r, nil
}

// DeleteRecurringRule removes a rule; documents it generated stay.
func (e *Engine) DeleteRecurringRule(ctx context.Context, id string) error {
	change, err := e.backend.Recurring().Delete(ctx, id)
	if err != nil {
		return err
	}
	e.commit(change)
	return nil
}

// Materialize creates the planned documents of every active rule for the
// next days days (the configured horizon when days <= 0).
func (e *Engine) Materialize(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = e.horizonDays
	}
	rules, err := e.backend.Recurring().List(ctx)
	if err != nil {
		return 0, err
	}
	generated, err := e.backend.Documents().List(ctx, store.DocumentFilter{})
	if err != nil {
		return 0, err
	}
	existing := make([]ledger.Document, 0, len(generated))
	for _, d := range generated {
		if d.RecurringRuleID != "" {
			existing = append(existing, d.Document)
		}
	}

	n, change, err := recurring.Materialize(ctx, e.backend.Documents(), rules, existing, e.today(), days)
	if err != nil {
		return 0, err
	}
	e.commit(change)
	e.log.V(1).Info("recurring documents materialized", logger.CountKey, n)
	return n, nil
}

// Refresh marks open documents past their due date as overdue.
func (e *Engine) Refresh(ctx context.Context) (int, error) {
	n, change, err := e.backend.Documents().MarkOverdue(ctx, e.today())
	if err != nil {
		return 0, err
	}
	e.commit(change)
	if n > 0 {
		e.log.V(1).Info("documents marked overdue", logger.CountKey, n)
	}
	return n, nil
}

// CashflowView is the projection of open documents over a window.
type CashflowView struct {
	From    ledger.Date            `json:"from" yaml:"from"`
	To      ledger.Date            `json:"to" yaml:"to"`
	Summary cashflow.Summary       `json:"summary" yaml:"summary"`
	Events  []ledger.CashflowEvent `json:"events" yaml:"events"`
	Days    []cashflow.Day         `json:"-" yaml:"-"`
	Points  []cashflow.Point       `json:"balance" yaml:"balance"`
}

// Cashflow projects the next days days (the configured horizon when
// days <= 0) starting today.
func (e *Engine) Cashflow(ctx context.Context, days int) (CashflowView, error) {
	if days <= 0 {
		days = e.horizonDays
	}
	from, to := cashflow.Window(e.today(), days)
	events, err := notify.GetOrLoad(e.cache, notify.Cashflow, from.String()+"/"+to.String(),
		func() ([]ledger.CashflowEvent, error) {
			return e.backend.Cashflow().Events(ctx, from, to)
		})
	if err != nil {
		return CashflowView{}, err
	}
	return CashflowView{
		From:    from,
		To:      to,
		Summary: cashflow.Summarize(events),
		Events:  events,
		Days:    cashflow.Timeline(events),
		Points:  cashflow.Balance(events),
	}, nil
}

// Dashboard defaults.
const (
	UpcomingDays  = 7
	UpcomingLimit = 5
)

// Dashboard is the at-a-glance state: the projected balance over the
// horizon, overdue documents and open documents due within UpcomingDays.
type Dashboard struct {
	From          ledger.Date               `json:"from" yaml:"from"`
	To            ledger.Date               `json:"to" yaml:"to"`
	Balance       ledger.Amount             `json:"balance" yaml:"balance"`
	Summary       cashflow.Summary          `json:"summary" yaml:"summary"`
	Overdue       []ledger.DocumentEnhanced `json:"overdue" yaml:"overdue"`
	UpcomingCount int                       `json:"upcoming_count" yaml:"upcoming_count"`
	Upcoming      []ledger.DocumentEnhanced `json:"upcoming" yaml:"upcoming"`
}

// Dashboard marks overdue documents and collects the dashboard. Upcoming
// documents are due from today through today+UpcomingDays-1, neither paid
// nor cancelled; at most UpcomingLimit are returned, earliest first.
func (e *Engine) Dashboard(ctx context.Context) (Dashboard, error) {
	if _, err := e.Refresh(ctx); err != nil {
		return Dashboard{}, err
	}
	cv, err := e.Cashflow(ctx, 0)
	if err != nil {
		return Dashboard{}, err
	}
	overdue, err := e.Documents(ctx, DocumentQuery{Filter: store.DocumentFilter{Status: ledger.StatusOverdue}})
	if err != nil {
		return Dashboard{}, err
	}
	today := e.today()
	due, err := e.Documents(ctx, DocumentQuery{Filter: store.DocumentFilter{
		DueFrom: today,
		DueTo:   today.AddDays(UpcomingDays - 1),
	}})
	if err != nil {
		return Dashboard{}, err
	}
	upcoming := make([]ledger.DocumentEnhanced, 0, len(due))
	for _, d := range due {
		if d.Status == ledger.StatusPaid || d.Status == ledger.StatusCancelled {
			continue
		}
		upcoming = append(upcoming, d)
	}

	db := Dashboard{
		From:          cv.From,
		To:            cv.To,
		Balance:       cv.Summary.Balance,
		Summary:       cv.Summary,
		Overdue:       overdue,
		UpcomingCount: len(upcoming),
		Upcoming:      upcoming,
	}
	if len(db.Upcoming) > UpcomingLimit {
		db.Upcoming = db.Upcoming[:UpcomingLimit]
	}
	return db, nil
}
