package table

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// Item represents a simple key/value used for testing generic table
type Item struct {
	Key   string
	Value string
	Note  string
}

func itemColumns() []columns.Descriptor {
	return []columns.Descriptor{
		{ID: "key", Label: "KEY", Priority: 0, Width: "80",
			Accessor: columns.Func(func(r any) any { return r.(Item).Key })},
		{ID: "value", Label: "VALUE", Priority: 1, Width: "160px",
			Accessor: columns.Func(func(r any) any { return r.(Item).Value })},
		{ID: "note", Label: "NOTE", Priority: 2, Width: "160",
			Accessor: columns.Func(func(r any) any { return r.(Item).Note })},
	}
}

func makeModel() *Model[Item] {
	rowValue := func(v Item) any { return v }
	keyFn := func(v Item) string { return v.Key }
	return NewModel[Item](itemColumns(), rowValue, keyFn)
}

func TestTable_SetRowsAndFilter(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "apple"}, {Key: "banana"}, {Key: "apricot"}})
	require.Len(t, m.Rows(), 3)

	m.SetFilter("ap")
	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "apple", rows[0].Key)
	assert.Equal(t, "apricot", rows[1].Key)
	assert.Equal(t, "ap", m.Filter())

	m.SetFilter("zzz")
	assert.Empty(t, m.Rows())
	assert.Nil(t, m.SelectedRow())

	m.ClearFilter()
	assert.Len(t, m.Rows(), 3)
	assert.Len(t, m.AllRows(), 3)
}

func TestTable_FilterRanksCloserMatchesFirst(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "office rental"}, {Key: "rent"}})

	m.SetFilter("rent")
	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "rent", rows[0].Key)
}

func TestTable_CursorSelection(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "apple"}, {Key: "banana"}})

	sel := m.SelectedRow()
	require.NotNil(t, sel)
	assert.Equal(t, "apple", sel.Key)

	m.SetCursor(1)
	sel = m.SelectedRow()
	require.NotNil(t, sel)
	assert.Equal(t, "banana", sel.Key)

	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.LessOrEqual(t, m.Cursor(), 1)
}

func TestTable_VisibleColumnsFollowWidth(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		want   []string
		hidden int
	}{
		{name: "unmeasured shows all", width: 0, want: []string{"key", "value", "note"}},
		{name: "narrow keeps priority zero", width: 10, want: []string{"key"}, hidden: 2},
		{name: "medium drops lowest tier", width: 40, want: []string{"key", "value"}, hidden: 1},
		{name: "wide shows all", width: 100, want: []string{"key", "value", "note"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := makeModel()
			m.SetRows([]Item{{Key: "k", Value: "v", Note: "n"}})
			m.SetSize(tt.width, 8)
			assert.Equal(t, tt.want, m.VisibleColumns())
			assert.Equal(t, tt.hidden, m.HiddenCount())
		})
	}
}

func TestTable_WindowSizeReselects(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "k", Value: "v", Note: "n"}})
	m.SetSize(40, 8)
	require.Equal(t, []string{"key", "value"}, m.VisibleColumns())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, []string{"key", "value", "note"}, m.VisibleColumns())

	m.Update(tea.WindowSizeMsg{Width: 10, Height: 30})
	assert.Equal(t, []string{"key"}, m.VisibleColumns())
	assert.Contains(t, m.View(), "KEY")
	assert.NotContains(t, m.View(), "VALUE")
}

func TestTable_SetLayout(t *testing.T) {
	m := makeModel()
	m.SetSize(40, 8)
	require.Equal(t, []string{"key", "value"}, m.VisibleColumns())

	// 40 cells at 16px each leaves room for every column.
	m.SetLayout(16, 40)
	assert.Equal(t, []string{"key", "value", "note"}, m.VisibleColumns())
}

func TestTable_SizeHeightFocus(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "k", Value: "v"}})

	m.SetSize(40, 8)
	assert.Positive(t, m.Height())
	assert.Positive(t, m.Width())

	m.SetHeight(12)
	assert.Positive(t, m.Height())

	assert.True(t, m.Focused())
	m.Blur()
	assert.False(t, m.Focused())
	m.Focus()
	assert.True(t, m.Focused())
}

func TestTable_ColorScheme(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "k", Value: "v"}})

	m.SetNoColor(true)
	m.SetColors(lipgloss.Color("12"), lipgloss.Color("0"), lipgloss.Color("15"), lipgloss.Color("8"))

	assert.NotEmpty(t, m.View())
}

func TestTable_StringDebug(t *testing.T) {
	m := makeModel()
	m.SetRows([]Item{{Key: "k", Value: "v"}})
	assert.Contains(t, m.String(), "rows=1")
	assert.Contains(t, m.String(), "columns=3/3")
}
