// Package table is a responsive bubbles table: it shows only the columns
// that fit the terminal width, re-selecting them on every resize.
package table

import (
	"fmt"
	"image/color"
	"sort"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// Model is a generic table over rows of type V. Cells come from the column
// descriptors applied to rowValue(v); filtering ranks keyFunc(v) fuzzily.
type Model[V any] struct {
	table  bubtable.Model
	styles bubtable.Styles

	descriptors []columns.Descriptor
	visible     []columns.Descriptor

	rows     []V    // Original unfiltered rows
	filter   string // Current filter text
	filtered []V    // Filtered rows

	rowValue func(V) any
	keyFunc  func(V) string

	measurement layout.Measurement
	cellWidth   int
	buffer      int
	width       int
	height      int
	focused     bool
	noColor     bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a table over cols. Until SetSize is called the width is
// unmeasured and every column is shown.
func NewModel[V any](cols []columns.Descriptor, rowValue func(V) any, keyFunc func(V) string) *Model[V] {
	t := bubtable.New(
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	m := &Model[V]{
		table:       t,
		styles:      s,
		descriptors: cols,
		rows:        []V{},
		filtered:    []V{},
		rowValue:    rowValue,
		keyFunc:     keyFunc,
		cellWidth:   layout.DefaultCellWidth,
		buffer:      columns.DefaultBuffer,
		height:      10,
		focused:     true,
	}
	m.relayout()
	return m
}

// SetLayout sets the pixels per cell and the reserved buffer used to pick
// visible columns.
func (m *Model[V]) SetLayout(cellWidth, buffer int) {
	if cellWidth > 0 {
		m.cellWidth = cellWidth
	}
	if buffer >= 0 {
		m.buffer = buffer
	}
	if m.measurement.Measured {
		m.measurement = layout.Measured(layout.CellsToPixels(m.width, m.cellWidth))
	}
	m.relayout()
}

// SetColumns replaces the column set.
func (m *Model[V]) SetColumns(cols []columns.Descriptor) {
	m.descriptors = cols
	m.relayout()
}

// VisibleColumns returns the ids currently shown, in display order.
func (m *Model[V]) VisibleColumns() []string {
	return columns.IDs(m.visible)
}

// HiddenCount is the number of columns that did not fit.
func (m *Model[V]) HiddenCount() int {
	return len(m.descriptors) - len(m.visible)
}

// Columns returns every descriptor, visible or not.
func (m *Model[V]) Columns() []columns.Descriptor {
	return m.descriptors
}

// SetRows updates the table with new row data.
func (m *Model[V]) SetRows(rows []V) {
	m.rows = rows
	m.applyFilter()
}

// Rows returns the current filtered rows.
func (m *Model[V]) Rows() []V {
	return m.filtered
}

// AllRows returns all unfiltered rows.
func (m *Model[V]) AllRows() []V {
	return m.rows
}

// SetFilter sets the filter text and reapplies filtering.
func (m *Model[V]) SetFilter(filter string) {
	m.filter = filter
	m.applyFilter()
}

// Filter returns the current filter text.
func (m *Model[V]) Filter() string {
	return m.filter
}

// ClearFilter removes the filter and shows all rows.
func (m *Model[V]) ClearFilter() {
	m.filter = ""
	m.applyFilter()
}

// applyFilter keeps rows whose key fuzzily matches the filter, best match
// first; ties keep their original order.
func (m *Model[V]) applyFilter() {
	if m.filter == "" {
		m.filtered = m.rows
	} else {
		keys := make([]string, len(m.rows))
		for i, row := range m.rows {
			keys[i] = m.keyFunc(row)
		}
		ranks := fuzzy.RankFindNormalizedFold(m.filter, keys)
		sort.SliceStable(ranks, func(i, j int) bool {
			if ranks[i].Distance != ranks[j].Distance {
				return ranks[i].Distance < ranks[j].Distance
			}
			return ranks[i].OriginalIndex < ranks[j].OriginalIndex
		})
		m.filtered = make([]V, len(ranks))
		for i, r := range ranks {
			m.filtered[i] = m.rows[r.OriginalIndex]
		}
	}
	m.refreshRows()

	if m.Cursor() >= len(m.filtered) && len(m.filtered) > 0 {
		m.SetCursor(0)
	}
}

// relayout re-selects the visible columns for the current measurement.
func (m *Model[V]) relayout() {
	m.visible = layout.Plan(m.descriptors, m.measurement, m.buffer).Columns(m.descriptors)

	cols := make([]bubtable.Column, len(m.visible))
	for i, d := range m.visible {
		title := d.Header()
		w := layout.PixelsToCells(columns.ResolveWidth(d), m.cellWidth)
		w = max(w, runewidth.StringWidth(title))
		cols[i] = bubtable.Column{Title: title, Width: w}
	}
	// Rows must match the new column count before the columns change.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.refreshRows()
}

func (m *Model[V]) refreshRows() {
	tableRows := make([]bubtable.Row, len(m.filtered))
	for i, v := range m.filtered {
		row := m.rowValue(v)
		cells := make(bubtable.Row, len(m.visible))
		for j, d := range m.visible {
			cells[j] = d.Cell(row)
		}
		tableRows[i] = cells
	}
	m.table.SetRows(tableRows)
}

// Cursor returns the current cursor position.
func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

// SetCursor sets the cursor position.
func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the currently selected row value, or nil if no rows.
func (m *Model[V]) SelectedRow() *V {
	if len(m.filtered) == 0 {
		return nil
	}
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[cursor]
}

// SetSize measures the table at width cells and height rows and
// re-selects the visible columns.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(height)
	m.table.SetWidth(width)
	if width > 0 {
		m.measurement = layout.Measured(layout.CellsToPixels(width, m.cellWidth))
	} else {
		m.measurement = layout.Unmeasured
	}
	m.relayout()
}

// SetHeight updates only the table height, preserving current width.
func (m *Model[V]) SetHeight(height int) {
	m.height = height
	m.table.SetHeight(height)
}

// Focus sets the table focus state.
func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the table.
func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused returns true if the table has focus.
func (m *Model[V]) Focused() bool {
	return m.focused
}

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles

	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}

	m.table.SetStyles(s)
	m.styles = s
}

// Update resizes on tea.WindowSizeMsg and forwards everything else to the
// bubbles table.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.SetSize(ws.Width, m.height)
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table to a string.
func (m *Model[V]) View() string {
	return m.table.View()
}

// Height returns the rendered height of the table.
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// Width returns the rendered width of the table.
func (m *Model[V]) Width() int {
	return lipgloss.Width(m.View())
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, filtered=%d, cursor=%d, filter=%q, columns=%d/%d]",
		len(m.rows), len(m.filtered), m.Cursor(), m.filter, len(m.visible), len(m.descriptors))
}
