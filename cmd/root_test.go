package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/pkg/settings"
)

var createdID = regexp.MustCompile(`(?m)^created [a-z ]+ (\S+)$`)

// cli runs commands against one database in a temp dir with today fixed to
// 2025-03-01.
type cli struct {
	t   *testing.T
	db  string
	cfg string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))
	return &cli{t: t, db: filepath.Join(dir, "cashbook.db"), cfg: cfg}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	o := &rootOptions{
		run:   settings.NewCliParams(),
		today: func() ledger.Date { return ledger.MustDate("2025-03-01") },
	}
	root := newRootCmd(o)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	base := []string{"--db", c.db, "--config-file", c.cfg, "--no-color"}
	if !hasFlag(args, "--width") {
		base = append(base, "--width", "200")
	}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name || strings.HasPrefix(a, name+"=") {
			return true
		}
	}
	return false
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) create(args ...string) string {
	c.t.Helper()
	out := c.mustRun(args...)
	m := createdID.FindStringSubmatch(out)
	require.Len(c.t, m, 2, out)
	return m[1]
}

func (c *cli) addRent() string {
	c.t.Helper()
	return c.create("documents", "add", "--kind", "ap_invoice", "--direction", "out",
		"--title", "Office rent", "--number", "FV/01/2025", "--counterparty", "Landlord",
		"--net", "1000.00", "--gross", "1230.00", "--due", "2025-03-10")
}

func TestVersion(t *testing.T) {
	out := newCLI(t).mustRun("version")
	assert.Contains(t, out, "cashbook v0.0.0-nightly")
}

func TestDocumentsLifecycle(t *testing.T) {
	c := newCLI(t)
	id := c.addRent()

	out := c.mustRun("documents", "list")
	assert.Contains(t, out, "Office rent")
	assert.Contains(t, out, "1,230.00")

	out = c.mustRun("documents", "show", id)
	assert.Contains(t, out, "FV/01/2025")
	assert.Contains(t, out, "Landlord")

	c.mustRun("documents", "update", id, "--title", "Office rent March")
	out = c.mustRun("documents", "list", "-o", "json")
	assert.Contains(t, out, `"title": "Office rent March"`)

	out = c.mustRun("payments", "add", id, "--amount", "230.00", "--date", "2025-02-27")
	assert.Contains(t, out, "is partial")
	out = c.mustRun("payments", "add", id, "--amount", "1000.00", "--date", "2025-02-28", "--method", "cash")
	assert.Contains(t, out, "is paid")

	out = c.mustRun("payments", "list", id)
	assert.Contains(t, out, "1,000.00")
	assert.Contains(t, out, "230.00")

	out = c.mustRun("documents", "show", id)
	assert.Contains(t, out, "Payments (2)")

	c.mustRun("documents", "delete", id)
	out = c.mustRun("documents", "list")
	assert.Contains(t, out, "No data to display.")

	_, err := c.run("documents", "show", id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
	assert.False(t, IsUsageError(err))
}

func TestDocumentsListColumnsFollowWidth(t *testing.T) {
	c := newCLI(t)
	c.addRent()

	narrow := c.mustRun("documents", "list", "--width", "60")
	assert.Contains(t, narrow, "Title")
	assert.NotContains(t, narrow, "Counterparty")
	assert.Contains(t, narrow, "hidden")

	wide := c.mustRun("documents", "list", "--width", "300")
	assert.Contains(t, wide, "Counterparty")
	assert.Contains(t, wide, "Landlord")
}

func TestDocumentsListFilters(t *testing.T) {
	c := newCLI(t)
	c.addRent()
	c.create("documents", "add", "--kind", "ar_invoice", "--direction", "in",
		"--title", "Consulting", "--gross", "5000.00", "--due", "2025-03-05")
	c.create("documents", "add", "--kind", "tax", "--direction", "out",
		"--title", "VAT", "--gross", "450.00", "--due", "2025-02-20", "--status", "issued")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{name: "kind", args: []string{"--kind", "tax"}, want: []string{"VAT"}, notWant: []string{"Consulting", "Office rent"}},
		{name: "direction", args: []string{"--direction", "IN"}, want: []string{"Consulting"}, notWant: []string{"VAT"}},
		{name: "overdue after refresh", args: []string{"--status", "overdue"}, want: []string{"VAT"}, notWant: []string{"Consulting"}},
		{name: "search", args: []string{"--search", "rent"}, want: []string{"Office rent"}, notWant: []string{"VAT"}},
		{name: "fuzzy", args: []string{"--fuzzy", "cnslt"}, want: []string{"Consulting"}, notWant: []string{"VAT"}},
		{name: "where", args: []string{"--where", "doc.amount_gross > 1000.0"}, want: []string{"Consulting", "Office rent"}, notWant: []string{"VAT"}},
		{name: "limit", args: []string{"--limit", "1"}, want: []string{"rows 1-1 of 3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.mustRun(append([]string{"documents", "list"}, tt.args...)...)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestDocumentsImport(t *testing.T) {
	c := newCLI(t)
	file := filepath.Join(t.TempDir(), "docs.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`documents:
  - kind: ap_invoice
    direction: OUT
    title: Internet
    due_date: 2025-03-15
    amount_gross: "99.99"
  - kind: ar_invoice
    direction: IN
    title: Workshop
    due_date: 2025-03-20
    amount_gross: 1500
`), 0o600))

	out := c.mustRun("documents", "import", file)
	assert.Contains(t, out, "imported 2 documents")

	out = c.mustRun("documents", "list", "-o", "toml")
	assert.Contains(t, out, "[[documents]]")
	assert.Contains(t, out, "Internet")
	assert.Contains(t, out, "Workshop")
}

func TestUsageErrors(t *testing.T) {
	c := newCLI(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown kind", args: []string{"documents", "list", "--kind", "receipt"}},
		{name: "limit and tail", args: []string{"documents", "list", "--limit", "1", "--tail", "1"}},
		{name: "bad output", args: []string{"documents", "list", "-o", "csv"}},
		{name: "bad view", args: []string{"cashflow", "--view", "pie"}},
		{name: "unknown flag", args: []string{"documents", "list", "--colour"}},
		{name: "bad amount", args: []string{"documents", "add", "--kind", "tax", "--direction", "out",
			"--title", "VAT", "--gross", "12.345", "--due", "2025-03-01"}},
		{name: "empty update", args: []string{"documents", "update", "some-id"}},
		{name: "unknown table", args: []string{"columns", "list", "invoices"}},
		{name: "bad currency", args: []string{"--currency", "EURO", "documents", "list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(tt.args...)
			require.Error(t, err)
			assert.True(t, IsUsageError(err), err.Error())
		})
	}
}

func TestRecurringMaterialize(t *testing.T) {
	c := newCLI(t)
	c.create("recurring", "add", "--kind", "standing_order", "--direction", "out",
		"--title", "Rent", "--amount", "2500.00", "--start", "2025-01-10")

	out := c.mustRun("recurring", "list")
	assert.Contains(t, out, "Rent")

	out = c.mustRun("recurring", "materialize", "--days", "90")
	assert.Contains(t, out, "created 3 documents")
	out = c.mustRun("recurring", "materialize", "--days", "90")
	assert.Contains(t, out, "created 0 documents")

	out = c.mustRun("documents", "list", "--kind", "standing_order", "-o", "json")
	assert.Equal(t, 3, strings.Count(out, `"title": "Rent"`))
}

func TestCashflowViews(t *testing.T) {
	c := newCLI(t)
	c.create("documents", "add", "--kind", "ar_invoice", "--direction", "in",
		"--title", "Consulting", "--gross", "5000.00", "--due", "2025-03-05")
	c.addRent()

	out := c.mustRun("cashflow", "--days", "30")
	assert.Contains(t, out, "Cashflow 01.03.2025")
	assert.Contains(t, out, "+5,000.00 PLN")
	assert.Contains(t, out, "+3,770.00 PLN")

	out = c.mustRun("cashflow", "--view", "timeline")
	assert.Contains(t, out, "05.03.2025")
	assert.Contains(t, out, "Office rent")

	out = c.mustRun("cashflow", "--view", "chart")
	assert.Contains(t, out, "xychart-beta")

	out = c.mustRun("cashflow", "--view", "table")
	assert.Contains(t, out, "Consulting")

	out = c.mustRun("cashflow", "-o", "json")
	assert.Contains(t, out, `"balance"`)

	out = c.mustRun("cashflow", "report")
	assert.Contains(t, out, "# Cashflow")

	out = c.mustRun("cashflow", "report", "--html")
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<table>")

	file := filepath.Join(t.TempDir(), "report.md")
	out = c.mustRun("cashflow", "report", "--output-file", file)
	assert.Contains(t, out, "wrote "+file)
	assert.FileExists(t, file)
}

func TestColumnsCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("columns", "visible", "documents", "--width", "60")
	assert.True(t, strings.HasPrefix(out, "title\ndue_date\namount_gross\nhidden: "), out)
	assert.Contains(t, out, "hidden: status, counterparty")

	c.mustRun("columns", "hide", "documents", "status")
	out = c.mustRun("columns", "visible", "documents", "--width", "80")
	assert.NotContains(t, out, "status")

	out = c.mustRun("columns", "list", "documents", "-o", "json")
	assert.Contains(t, out, `"column_id": "status"`)

	c.mustRun("columns", "show", "documents", "status")
	out = c.mustRun("columns", "visible", "documents", "--width", "300")
	assert.Contains(t, out, "status")

	_, err := c.run("columns", "hide", "documents", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestConfigGet(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("config", "get")
	assert.Contains(t, out, "currency: PLN")

	out = c.mustRun("--currency", "eur", "config", "get", "-o", "json")
	assert.Contains(t, out, `"currency": "EUR"`)

	out = c.mustRun("config", "path")
	assert.Contains(t, out, c.db)
}

func TestDashboard(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("dashboard")
	assert.Contains(t, out, "Dashboard 01.03.2025")
	assert.Contains(t, out, "Overdue            0")
	assert.NotContains(t, out, "Upcoming payments")

	c.create("documents", "add", "--kind", "tax", "--direction", "out", "--status", "issued",
		"--title", "VAT", "--gross", "450.00", "--due", "2025-02-20")
	c.create("documents", "add", "--kind", "ar_invoice", "--direction", "in",
		"--title", "Consulting", "--gross", "5000.00", "--due", "2025-03-07")
	c.addRent()

	out = c.mustRun("dashboard")
	assert.Contains(t, out, "+3,770.00 PLN")
	assert.Contains(t, out, "Upcoming (7 days)  1")
	assert.Contains(t, out, "Overdue            1")
	assert.Contains(t, out, "Upcoming payments (1 of 1)")
	assert.Contains(t, out, "Consulting")
	assert.Contains(t, out, "Overdue documents (1)")
	assert.Contains(t, out, "VAT")
	assert.NotContains(t, out, "Office rent")

	out = c.mustRun("dashboard", "-o", "json")
	assert.Contains(t, out, `"upcoming_count": 1`)

	_, err := c.run("dashboard", "-o", "html")
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}

func TestColumnsVisibleSelectionOrder(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(c.cfg, []byte(`tables:
  documents:
    columns:
      status:
        priority: 3
`), 0o600))

	out := c.mustRun("columns", "visible", "documents", "--px", "1200", "--buffer", "0")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, []string{
		"title", "due_date", "amount_gross",
		"counterparty",
		"document_number", "remaining",
		"status", "document_type",
	}, lines[:len(lines)-1])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "hidden: direction, issue_date"), out)

	_, err := c.run("columns", "visible", "documents", "--px", "-5")
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}
