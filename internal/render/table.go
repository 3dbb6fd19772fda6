package render

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// DefaultEmptyMessage is printed instead of a table without rows.
const DefaultEmptyMessage = "No data to display."

const (
	sepWidth    = 2
	minColWidth = 3
)

// Options configures text table rendering.
type Options struct {
	// Width is the available width in terminal cells. Zero means the width
	// is unknown and every column is shown.
	Width int

	// CellWidth is the pixel width of one cell, used to compare Width with
	// the pixel width hints of the columns.
	CellWidth int

	// Buffer is the number of pixels kept free when selecting columns.
	Buffer int

	// NoColor disables styling.
	NoColor bool

	// RowNumberStyle controls the leading row number column:
	//   "numbered" - 1, 2, 3
	//   "index"    - [0], [1], [2]
	//   "none"     - no row number column (default)
	RowNumberStyle string

	// EmptyMessage replaces DefaultEmptyMessage.
	EmptyMessage string

	// NoFooter suppresses the hidden column summary.
	NoFooter bool
}

// DefaultOptions returns options with the default buffer and cell width.
func DefaultOptions() Options {
	return Options{
		CellWidth:      layout.DefaultCellWidth,
		Buffer:         columns.DefaultBuffer,
		RowNumberStyle: "none",
	}
}

func (o Options) measurement() layout.Measurement {
	if o.Width <= 0 {
		return layout.Unmeasured
	}
	return layout.Measured(layout.CellsToPixels(o.Width, o.CellWidth))
}

// Table renders rows as a text table showing the columns that fit into
// opts.Width. Visible columns keep the order of cols.
func Table(rows []any, cols []columns.Descriptor, opts Options) string {
	if len(rows) == 0 {
		msg := opts.EmptyMessage
		if msg == "" {
			msg = DefaultEmptyMessage
		}
		return msg + "\n"
	}

	plan := layout.Plan(cols, opts.measurement(), opts.Buffer)
	visible := plan.Columns(cols)
	if len(visible) == 0 {
		return ""
	}

	headers := make([]string, len(visible))
	for i, c := range visible {
		headers[i] = c.Header()
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(visible))
		for i, c := range visible {
			cells[r][i] = singleLine(c.Cell(row))
		}
	}

	showRowNum := opts.RowNumberStyle == "numbered" || opts.RowNumberStyle == "index"
	rowNumWidth := 0
	if showRowNum {
		rowNumWidth = len(fmt.Sprintf("%d", len(rows))) + 2
	}

	available := 0
	if opts.Width > 0 {
		available = opts.Width - rowNumWidth
		if showRowNum {
			available -= sepWidth
		}
	}
	widths := columnWidths(visible, headers, cells, available, opts.CellWidth)

	var b strings.Builder
	b.WriteString(renderHeader(headers, widths, rowNumWidth, showRowNum, opts.NoColor) + "\n")

	total := rowNumWidth
	if showRowNum {
		total += sepWidth
	}
	for i, w := range widths {
		total += w
		if i < len(widths)-1 {
			total += sepWidth
		}
	}
	separator := strings.Repeat("─", total)
	if !opts.NoColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for r, row := range cells {
		b.WriteString(renderDataRow(r, row, visible, widths, rowNumWidth, opts.RowNumberStyle, opts.NoColor) + "\n")
	}

	if plan.Truncated() && !opts.NoFooter {
		b.WriteString(footer(plan, len(cols), opts.NoColor) + "\n")
	}
	return b.String()
}

// footer summarizes the hidden columns, e.g. "showing 3 of 9 columns (hidden: notes, vat_id)".
func footer(plan columns.Plan, total int, noColor bool) string {
	s := fmt.Sprintf("showing %d of %d columns (hidden: %s)", len(plan.Visible), total, strings.Join(plan.Hidden, ", "))
	if !noColor {
		s = footerStyle.Render(s)
	}
	return s
}

// columnWidths sizes each column to its widest cell, capped by the column's
// width hint. When the result exceeds available cells the least important
// columns shrink first.
func columnWidths(cols []columns.Descriptor, headers []string, cells [][]string, available, cellWidth int) []int {
	widths := make([]int, len(cols))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, v := range row {
			if w := lipgloss.Width(v); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, c := range cols {
		limit := layout.PixelsToCells(columns.ResolveWidth(c), cellWidth)
		if lw := lipgloss.Width(headers[i]); limit < lw {
			limit = lw
		}
		if limit > 0 && widths[i] > limit {
			widths[i] = limit
		}
	}

	if available <= 0 {
		return widths
	}
	usable := available - (len(cols)-1)*sepWidth
	return shrinkByPriority(widths, usable, cols)
}

// shrinkByPriority reduces widths to fit usable cells. Columns with the
// highest priority number give up space first; priority 0 columns last.
func shrinkByPriority(widths []int, usable int, cols []columns.Descriptor) []int {
	total := 0
	for _, w := range widths {
		total += w
	}
	excess := total - usable
	if excess <= 0 {
		return widths
	}

	order := make([]int, len(widths))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cols[order[a]].Priority > cols[order[b]].Priority
	})

	for _, idx := range order {
		if excess <= 0 {
			break
		}
		shrinkable := widths[idx] - minColWidth
		if shrinkable <= 0 {
			continue
		}
		shrink := min(shrinkable, excess)
		widths[idx] -= shrink
		excess -= shrink
	}
	return widths
}

func renderHeader(headers []string, widths []int, rowNumWidth int, showRowNum, noColor bool) string {
	parts := make([]string, 0, len(headers)+1)
	if showRowNum {
		h := pad("#", rowNumWidth, columns.AlignLeft)
		if !noColor {
			h = headerStyle.Render(h)
		}
		parts = append(parts, h)
	}
	for i, col := range headers {
		h := pad(col, widths[i], columns.AlignLeft)
		if !noColor {
			h = headerStyle.Render(h)
		}
		parts = append(parts, h)
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", sepWidth)), " ")
}

func renderDataRow(rowIndex int, values []string, cols []columns.Descriptor, widths []int, rowNumWidth int, rowNumStyle string, noColor bool) string {
	parts := make([]string, 0, len(values)+1)
	switch rowNumStyle {
	case "numbered", "index":
		num := fmt.Sprintf("%d", rowIndex+1)
		if rowNumStyle == "index" {
			num = fmt.Sprintf("[%d]", rowIndex)
		}
		num = pad(num, rowNumWidth, columns.AlignLeft)
		if !noColor {
			num = keyStyle.Render(num)
		}
		parts = append(parts, num)
	}
	for i, v := range values {
		s := pad(v, widths[i], cols[i].Align)
		if !noColor {
			s = valueStyle.Render(s)
		}
		parts = append(parts, s)
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", sepWidth)), " ")
}
