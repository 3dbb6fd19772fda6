package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/pkg/columns"
)

func testColumns() []columns.Descriptor {
	return []columns.Descriptor{
		{ID: "title", Label: "Title", Priority: 0, Width: "160", Accessor: columns.Field("title")},
		{ID: "amount", Label: "Amount", Priority: 1, Width: "96", Align: columns.AlignRight, Accessor: columns.Field("amount")},
		{ID: "status", Label: "Status", Priority: 2, Width: "80", Accessor: columns.Field("status")},
		{ID: "notes", Label: "Notes", Priority: 3, Width: "240", Accessor: columns.Field("notes")},
	}
}

func testRows() []any {
	return []any{
		map[string]any{"title": "Office rent", "amount": "3,000.00", "status": "Issued", "notes": "March"},
		map[string]any{"title": "Invoice <b>7</b>", "amount": "12.50", "status": "Paid", "notes": nil},
	}
}

func plainOptions(width int) Options {
	opts := DefaultOptions()
	opts.NoColor = true
	opts.Width = width
	return opts
}

func TestTableEmpty(t *testing.T) {
	assert.Equal(t, "No data to display.\n", Table(nil, testColumns(), plainOptions(80)))

	opts := plainOptions(80)
	opts.EmptyMessage = "Nothing due."
	assert.Equal(t, "Nothing due.\n", Table([]any{}, testColumns(), opts))
}

func TestTableUnmeasuredShowsAllColumns(t *testing.T) {
	out := Table(testRows(), testColumns(), plainOptions(0))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)

	for _, h := range []string{"Title", "Amount", "Status", "Notes"} {
		assert.Contains(t, lines[0], h)
	}
	assert.NotContains(t, out, "showing")
}

func TestTableHidesColumnsThatDoNotFit(t *testing.T) {
	// 40 cells = 320px, budget 280px: title 160 + amount 96 fit, status does not.
	out := Table(testRows(), testColumns(), plainOptions(40))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Contains(t, lines[0], "Title")
	assert.Contains(t, lines[0], "Amount")
	assert.NotContains(t, lines[0], "Status")
	assert.NotContains(t, lines[0], "Notes")
	assert.Equal(t, "showing 2 of 4 columns (hidden: status, notes)", lines[len(lines)-1])

	t.Run("no footer", func(t *testing.T) {
		opts := plainOptions(40)
		opts.NoFooter = true
		assert.NotContains(t, Table(testRows(), testColumns(), opts), "showing")
	})
}

func TestTableKeepsDisplayOrder(t *testing.T) {
	cols := []columns.Descriptor{
		{ID: "a", Label: "A", Priority: 2, Width: "40", Accessor: columns.Field("a")},
		{ID: "b", Label: "B", Priority: 0, Width: "40", Accessor: columns.Field("b")},
	}
	rows := []any{map[string]any{"a": "x", "b": "y"}}
	out := Table(rows, cols, plainOptions(0))
	header := strings.SplitN(out, "\n", 2)[0]
	assert.Less(t, strings.Index(header, "A"), strings.Index(header, "B"))
}

func TestTableAlignment(t *testing.T) {
	cols := []columns.Descriptor{
		{ID: "name", Priority: 0, Width: "80", Accessor: columns.Field("name")},
		{ID: "amount", Priority: 0, Width: "80", Align: columns.AlignRight, Accessor: columns.Field("amount")},
	}
	rows := []any{
		map[string]any{"name": "a", "amount": "1.00"},
		map[string]any{"name": "b", "amount": "100.00"},
	}
	out := Table(rows, cols, plainOptions(0))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "name  amount", lines[0])
	assert.Equal(t, "a       1.00", lines[2])
	assert.Equal(t, "b     100.00", lines[3])
}

func TestTableRowNumbers(t *testing.T) {
	opts := plainOptions(0)
	opts.RowNumberStyle = "numbered"
	out := Table(testRows(), testColumns(), opts)
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.True(t, strings.HasPrefix(lines[2], "1"))
	assert.True(t, strings.HasPrefix(lines[3], "2"))
}

func TestTruncateAndPad(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
	assert.Equal(t, "", truncate("abc", 0))

	assert.Equal(t, "ab   ", pad("ab", 5, columns.AlignLeft))
	assert.Equal(t, "   ab", pad("ab", 5, columns.AlignRight))
	assert.Equal(t, " ab  ", pad("ab", 5, columns.AlignCenter))
	assert.Equal(t, `a\nb`, singleLine("a\r\nb"))
}

func TestShrinkByPriority(t *testing.T) {
	cols := []columns.Descriptor{{ID: "a", Priority: 0}, {ID: "b", Priority: 1}, {ID: "c", Priority: 2}}
	got := shrinkByPriority([]int{10, 10, 10}, 22, cols)
	assert.Equal(t, []int{10, 9, 3}, got)

	got = shrinkByPriority([]int{10, 10, 10}, 40, cols)
	assert.Equal(t, []int{10, 10, 10}, got)
}

func TestDetail(t *testing.T) {
	row := testRows()[0]
	out := Detail(DetailPairs(row, testColumns()), true, 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "FIELD   VALUE", lines[0])
	assert.Equal(t, "Title   Office rent", lines[2])
	assert.Equal(t, "Notes   March", lines[5])
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	err := HTML(&buf, testRows(), testColumns(), HTMLOptions{Title: "Documents", WidthPx: 320, Buffer: 40})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "<title>Documents</title>")
	assert.Contains(t, out, `data-column="title"`)
	assert.Contains(t, out, `data-column="amount"`)
	assert.NotContains(t, out, `data-column="status"`)
	assert.Contains(t, out, `class="align-right"`)
	assert.Contains(t, out, "Invoice &lt;b&gt;7&lt;/b&gt;")
	assert.Contains(t, out, "showing 2 of 4 columns (hidden: status, notes)")

	t.Run("unmeasured emits every column", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, HTML(&buf, testRows(), testColumns(), HTMLOptions{}))
		assert.Contains(t, buf.String(), `data-column="notes"`)
		assert.NotContains(t, buf.String(), "showing")
	})

	t.Run("width hints are written as given", func(t *testing.T) {
		cols := []columns.Descriptor{
			{ID: "title", Label: "Title", Priority: 0, Width: "30%", Accessor: columns.Field("title")},
			{ID: "amount", Label: "Amount", Priority: 0, Width: "120px", Accessor: columns.Field("amount")},
			{ID: "notes", Label: "Notes", Priority: 0, Accessor: columns.Field("notes")},
		}
		var buf bytes.Buffer
		require.NoError(t, HTML(&buf, testRows(), cols, HTMLOptions{}))
		out := buf.String()
		assert.Contains(t, out, `width="30%"`)
		assert.Contains(t, out, `width="120px"`)
		assert.Contains(t, out, `width="auto"`)
		assert.NotContains(t, out, `width="150"`)
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, HTML(&buf, nil, testColumns(), HTMLOptions{Title: "x"}))
		assert.Contains(t, buf.String(), DefaultEmptyMessage)
	})
}
