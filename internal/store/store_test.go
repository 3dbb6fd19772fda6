package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	n := 0
	s, err := Open(context.Background(), MemoryPath,
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func doc(title, due string, dir ledger.Direction, gross ledger.Amount) ledger.DocumentInsert {
	kind := ledger.KindARInvoice
	if dir == ledger.DirectionOut {
		kind = ledger.KindAPInvoice
	}
	return ledger.DocumentInsert{
		Kind:        kind,
		Direction:   dir,
		Status:      ledger.StatusIssued,
		Title:       title,
		DueDate:     ledger.MustDate(due),
		AmountGross: gross,
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cashbook.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	ctx := context.Background()
	_, _, err = s.Documents().Create(ctx, doc("Persisted", "2025-04-01", ledger.DirectionIn, 100))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	docs, err := s.Documents().List(ctx, DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Persisted", docs[0].Title)
}

func TestDocumentsCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Documents()

	net := ledger.Amount(100000)
	in := doc("Consulting March", "2025-03-31", ledger.DirectionIn, 123000)
	in.AmountNet = &net
	in.Number = "FV/3/2025"
	in.Status = ""

	created, change, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "id-001", created.ID)
	assert.Equal(t, ledger.StatusPlanned, created.Status)
	assert.Equal(t, ledger.DefaultCurrency, created.Currency)
	assert.True(t, change.Touches(notify.Documents))
	assert.True(t, change.Touches(notify.Cashflow))
	assert.True(t, change.Touches(notify.Document(created.ID)))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, "FV/3/2025", got.Number)
	require.NotNil(t, got.AmountNet)
	assert.Equal(t, net, *got.AmountNet)
	assert.Equal(t, ledger.MustDate("2025-03-31"), got.DueDate)
	assert.True(t, got.IssueDate.IsZero())
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	title := "Consulting 03/2025"
	updated, change, err := repo.Update(ctx, ledger.DocumentUpdate{ID: created.ID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, change.Touches(notify.Document(created.ID)))

	_, _, err = repo.Update(ctx, ledger.DocumentUpdate{ID: "missing", Title: &title})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	change, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, change.Touches(notify.Payments(created.ID)))

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDocumentCreateValidation(t *testing.T) {
	s := openTestStore(t)
	_, change, err := s.Documents().Create(context.Background(), ledger.DocumentInsert{Title: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.True(t, change.Empty())
}

func TestDocumentListFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Documents()

	cp, _, err := s.Counterparties().Create(ctx, ledger.CounterpartyInsert{Name: "Northwind Traders", VATID: "PL123"})
	require.NoError(t, err)

	rent := doc("Office rent", "2025-04-10", ledger.DirectionOut, 250000)
	rent.Counterparty = "Landlord"
	sales := doc("Website build", "2025-04-01", ledger.DirectionIn, 900000)
	sales.CounterpartyID = cp.ID
	sales.Number = "FV/100%_X"
	tax := doc("VAT April", "2025-04-25", ledger.DirectionOut, 40000)
	tax.Kind = ledger.KindTax
	tax.Status = ledger.StatusPlanned

	_, _, err = repo.CreateBatch(ctx, []ledger.DocumentInsert{rent, sales, tax})
	require.NoError(t, err)

	titles := func(f DocumentFilter) []string {
		docs, err := repo.List(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, d := range docs {
			out = append(out, d.Title)
		}
		return out
	}

	t.Run("ordered by due date", func(t *testing.T) {
		assert.Equal(t, []string{"Website build", "Office rent", "VAT April"}, titles(DocumentFilter{}))
	})
	t.Run("kind", func(t *testing.T) {
		assert.Equal(t, []string{"VAT April"}, titles(DocumentFilter{Kind: ledger.KindTax}))
	})
	t.Run("status", func(t *testing.T) {
		assert.Equal(t, []string{"VAT April"}, titles(DocumentFilter{Status: ledger.StatusPlanned}))
	})
	t.Run("direction", func(t *testing.T) {
		assert.Equal(t, []string{"Office rent", "VAT April"}, titles(DocumentFilter{Direction: ledger.DirectionOut}))
	})
	t.Run("search title case-insensitively", func(t *testing.T) {
		assert.Equal(t, []string{"Office rent"}, titles(DocumentFilter{Search: "RENT"}))
	})
	t.Run("search free-text counterparty", func(t *testing.T) {
		assert.Equal(t, []string{"Office rent"}, titles(DocumentFilter{Search: "landl"}))
	})
	t.Run("search linked counterparty", func(t *testing.T) {
		assert.Equal(t, []string{"Website build"}, titles(DocumentFilter{Search: "northwind"}))
	})
	t.Run("search escapes wildcards", func(t *testing.T) {
		assert.Equal(t, []string{"Website build"}, titles(DocumentFilter{Search: "100%_"}))
		assert.Empty(t, titles(DocumentFilter{Search: "e_b"}))
	})
	t.Run("due range", func(t *testing.T) {
		assert.Equal(t, []string{"Office rent"}, titles(DocumentFilter{
			DueFrom: ledger.MustDate("2025-04-02"), DueTo: ledger.MustDate("2025-04-10"),
		}))
	})
	t.Run("enhanced join", func(t *testing.T) {
		docs, err := repo.List(ctx, DocumentFilter{Search: "website"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Northwind Traders", docs[0].CounterpartyName)
		assert.Equal(t, "PL123", docs[0].CounterpartyVATID)
	})
}

func TestPaymentsSettleStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d, _, err := s.Documents().Create(ctx, doc("Invoice", "2025-03-20", ledger.DirectionIn, 10000))
	require.NoError(t, err)

	status := func() ledger.DocumentStatus {
		got, err := s.Documents().Get(ctx, d.ID)
		require.NoError(t, err)
		return got.Status
	}

	p1, change, err := s.Payments().Create(ctx, ledger.PaymentInsert{DocumentID: d.ID, Amount: 4000, PaidDate: ledger.MustDate("2025-03-05")})
	require.NoError(t, err)
	assert.Equal(t, ledger.MethodTransfer, p1.Method)
	assert.True(t, change.Touches(notify.Payments(d.ID)))
	assert.True(t, change.Touches(notify.Cashflow))
	assert.Equal(t, ledger.StatusPartial, status())

	p2, _, err := s.Payments().Create(ctx, ledger.PaymentInsert{DocumentID: d.ID, Amount: 6000, Method: ledger.MethodCash})
	require.NoError(t, err)
	assert.Equal(t, ledger.MustDate("2025-03-01"), p2.PaidDate)
	assert.Equal(t, ledger.StatusPaid, status())

	got, err := s.Documents().Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Amount(10000), got.TotalPaid)
	assert.Equal(t, ledger.MustDate("2025-03-05"), got.LatestPaymentDate)
	assert.Equal(t, ledger.Amount(0), got.Remaining())

	payments, err := s.Payments().ListByDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, p2.ID, payments[0].ID)

	_, err = s.Payments().Delete(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, status())

	_, err = s.Payments().Delete(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusIssued, status())

	_, err = s.Payments().Delete(ctx, p1.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, _, err = s.Payments().Create(ctx, ledger.PaymentInsert{DocumentID: "missing", Amount: 1})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDeleteDocumentCascadesPayments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	d, _, err := s.Documents().Create(ctx, doc("Invoice", "2025-03-20", ledger.DirectionIn, 10000))
	require.NoError(t, err)
	_, _, err = s.Payments().Create(ctx, ledger.PaymentInsert{DocumentID: d.ID, Amount: 100})
	require.NoError(t, err)

	_, err = s.Documents().Delete(ctx, d.ID)
	require.NoError(t, err)
	payments, err := s.Payments().ListByDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestMarkOverdue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	late, _, err := s.Documents().Create(ctx, doc("Late", "2025-02-01", ledger.DirectionIn, 100))
	require.NoError(t, err)
	planned := doc("Planned", "2025-02-01", ledger.DirectionIn, 100)
	planned.Status = ledger.StatusPlanned
	_, _, err = s.Documents().Create(ctx, planned)
	require.NoError(t, err)
	_, _, err = s.Documents().Create(ctx, doc("Future", "2025-04-01", ledger.DirectionIn, 100))
	require.NoError(t, err)

	n, change, err := s.Documents().MarkOverdue(ctx, ledger.MustDate("2025-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, change.Touches(notify.Document(late.ID)))

	got, err := s.Documents().Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusOverdue, got.Status)

	n, change, err = s.Documents().MarkOverdue(ctx, ledger.MustDate("2025-03-01"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, change.Empty())
}

func TestCashflowEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Documents()

	cancelled := doc("Cancelled", "2025-03-05", ledger.DirectionIn, 500)
	cancelled.Status = ledger.StatusCancelled
	_, _, err := repo.CreateBatch(ctx, []ledger.DocumentInsert{
		doc("B income", "2025-03-10", ledger.DirectionIn, 1000),
		doc("A expense", "2025-03-10", ledger.DirectionOut, 300),
		doc("Too late", "2025-07-01", ledger.DirectionIn, 100),
		doc("Too early", "2025-02-01", ledger.DirectionIn, 100),
		cancelled,
	})
	require.NoError(t, err)

	paid, _, err := repo.Create(ctx, doc("Paid", "2025-03-15", ledger.DirectionOut, 200))
	require.NoError(t, err)
	_, _, err = s.Payments().Create(ctx, ledger.PaymentInsert{DocumentID: paid.ID, Amount: 200})
	require.NoError(t, err)

	partial, _, err := repo.Create(ctx, doc("Partial", "2025-03-20", ledger.DirectionIn, 1000))
	require.NoError(t, err)
	_, _, err = s.Payments().Create(ctx, ledger.PaymentInsert{DocumentID: partial.ID, Amount: 250})
	require.NoError(t, err)

	events, err := s.Cashflow().Events(ctx, ledger.MustDate("2025-03-01"), ledger.MustDate("2025-05-30"))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "A expense", events[0].Title)
	assert.Equal(t, "B income", events[1].Title)
	assert.Equal(t, "Partial", events[2].Title)
	assert.Equal(t, ledger.Amount(750), events[2].Remaining)
	assert.Equal(t, ledger.Amount(250), events[2].PaidAmount)
	assert.Equal(t, ledger.StatusPartial, events[2].Status)
}

func TestCreateBatchSkipsRepeatedOccurrences(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rule, _, err := s.Recurring().Create(ctx, ledger.RecurringRuleInsert{
		Kind: ledger.KindStandingOrder, Direction: ledger.DirectionOut, Title: "SaaS",
		Amount: 19900, StartDate: ledger.MustDate("2025-01-01"), IsActive: true,
	})
	require.NoError(t, err)

	occurrence := doc("SaaS", "2025-04-01", ledger.DirectionOut, 19900)
	occurrence.RecurringRuleID = rule.ID

	created, change, err := s.Documents().CreateBatch(ctx, []ledger.DocumentInsert{occurrence})
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.False(t, change.Empty())

	created, change, err = s.Documents().CreateBatch(ctx, []ledger.DocumentInsert{occurrence})
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.True(t, change.Empty())

	docs, err := s.Documents().List(ctx, DocumentFilter{RecurringRuleID: rule.ID})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = s.Recurring().Delete(ctx, rule.ID)
	require.NoError(t, err)
	got, err := s.Documents().Get(ctx, docs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.RecurringRuleID)
}

func TestCounterpartiesAndRecurring(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "Alpha", "beta"} {
		_, change, err := s.Counterparties().Create(ctx, ledger.CounterpartyInsert{Name: name})
		require.NoError(t, err)
		assert.True(t, change.Touches(notify.Counterparties))
	}
	cps, err := s.Counterparties().List(ctx)
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, "Alpha", cps[0].Name)
	assert.Equal(t, "zeta", cps[2].Name)

	got, err := s.Counterparties().Get(ctx, cps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "beta", got.Name)
	_, err = s.Counterparties().Get(ctx, "nope")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, _, err = s.Counterparties().Create(ctx, ledger.CounterpartyInsert{})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	end := ledger.MustDate("2025-12-31")
	rule, change, err := s.Recurring().Create(ctx, ledger.RecurringRuleInsert{
		Kind: ledger.KindLeaseInstalment, Direction: ledger.DirectionOut, Title: "Car lease",
		Amount: 150000, DayOfMonth: 31, IntervalMonths: 1, StartDate: ledger.MustDate("2025-01-31"),
		EndDate: end, IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, change.Touches(notify.Recurring))

	rules, err := s.Recurring().List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.ID, rules[0].ID)
	assert.Equal(t, end, rules[0].EndDate)
	assert.True(t, rules[0].IsActive)
	assert.Equal(t, ledger.Amount(150000), rules[0].Amount)

	_, err = s.Recurring().Delete(ctx, "nope")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestColumns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Columns()

	seed := []ledger.TableColumn{
		{TableName: "documents", ColumnID: "title", Label: "Title", Priority: 0, Align: "left", IsActive: true, DisplayOrder: 1},
		{TableName: "documents", ColumnID: "due_date", Label: "Due", Priority: 1, Align: "left", Width: "110", IsActive: true, DisplayOrder: 0},
		{TableName: "documents", ColumnID: "notes", Label: "Notes", Priority: 5, IsActive: false, DisplayOrder: 2},
		{TableName: "payments", ColumnID: "amount", Label: "Amount", Priority: 0, IsActive: true},
	}

	n, change, err := repo.Seed(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, change.Touches(notify.TableColumns))

	n, change, err = repo.Seed(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, change.Empty())

	active, err := repo.List(ctx, "documents")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "due_date", active[0].ColumnID)
	assert.Equal(t, "110", active[0].Width)
	assert.Equal(t, "title", active[1].ColumnID)

	all, err := repo.ListAll(ctx, "documents")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.SetActive(ctx, "documents", "notes", true)
	require.NoError(t, err)
	active, err = repo.List(ctx, "documents")
	require.NoError(t, err)
	assert.Len(t, active, 3)

	_, err = repo.SetActive(ctx, "documents", "missing", true)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
