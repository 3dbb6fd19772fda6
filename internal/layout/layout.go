// Package layout observes the width available to a table and turns it into
// the set of columns that fit.
//
// Widths are measured in pixels. Terminal callers convert character cells
// with CellsToPixels so that the same column width hints serve the text,
// TUI and HTML renderers.
package layout

import (
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// DefaultCellWidth is the assumed pixel width of one terminal cell.
const DefaultCellWidth = 8

// Measurement is the latest known container width. The zero value means the
// container has not been measured yet.
type Measurement struct {
	Width    int
	Measured bool
}

// Unmeasured is the state before the first measurement arrives.
var Unmeasured = Measurement{}

// Measured returns a measurement of width pixels.
func Measured(width int) Measurement {
	return Measurement{Width: width, Measured: true}
}

// Visible returns the ids of the columns to show. Before the container has
// been measured every column is shown, in input order.
func Visible(cols []columns.Descriptor, m Measurement, buffer int) []string {
	return Plan(cols, m, buffer).Visible
}

// Plan is Visible with the hidden ids and budget attached.
func Plan(cols []columns.Descriptor, m Measurement, buffer int) columns.Plan {
	if !m.Measured {
		plan := columns.Plan{Visible: columns.IDs(cols), Hidden: []string{}}
		for _, c := range cols {
			plan.UsedWidth += columns.ResolveWidth(c)
		}
		plan.Budget = plan.UsedWidth
		return plan
	}
	return columns.Select(cols, m.Width, buffer)
}

// CellsToPixels converts a width in terminal cells to pixels.
func CellsToPixels(cells, cellWidth int) int {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	if cells <= 0 {
		return 0
	}
	return cells * cellWidth
}

// PixelsToCells converts a pixel width to the number of cells that covers it.
func PixelsToCells(px, cellWidth int) int {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	if px <= 0 {
		return 0
	}
	return (px + cellWidth - 1) / cellWidth
}

// TerminalCells reports the terminal width in cells, falling back to $COLUMNS.
// ok is false when nothing could be measured.
func TerminalCells() (int, bool) {
	for _, f := range []*os.File{os.Stdout, os.Stderr, os.Stdin} {
		if w, _, err := termGetSize(int(f.Fd())); err == nil && w > 0 {
			return w, true
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, true
		}
	}
	return 0, false
}

var termGetSize = term.GetSize
