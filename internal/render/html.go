package render

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/safehtml/template"

	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

//go:embed templates/*
var templateFS embed.FS

var loadTableTemplate = sync.OnceValues(func() (*template.Template, error) {
	trusted := template.TrustedFSFromEmbed(templateFS)
	return template.New("table.html").ParseFS(trusted, "templates/table.html")
})

// HTMLOptions configures HTML table rendering.
type HTMLOptions struct {
	// Title is the page heading.
	Title string
	// WidthPx is the container width in pixels. Zero means unmeasured, and
	// every column is emitted.
	WidthPx int
	// Buffer is the number of pixels kept free when selecting columns.
	Buffer int
	// EmptyMessage replaces DefaultEmptyMessage.
	EmptyMessage string
}

type htmlColumn struct {
	ID    string
	Label string
	Align string
	Width string
}

type htmlRow struct {
	Cells []htmlCell
}

type htmlCell struct {
	Text  string
	Align string
}

type htmlView struct {
	Title        string
	Columns      []htmlColumn
	Rows         []htmlRow
	EmptyMessage string
	Hidden       []string
	Total        int
}

// HTML writes rows as a standalone HTML page. Column widths and alignment
// are emitted as attributes; text is escaped by the template engine.
func HTML(w io.Writer, rows []any, cols []columns.Descriptor, opts HTMLOptions) error {
	tmpl, err := loadTableTemplate()
	if err != nil {
		return fmt.Errorf("parse table template: %w", err)
	}

	m := layout.Unmeasured
	if opts.WidthPx > 0 {
		m = layout.Measured(opts.WidthPx)
	}
	plan := layout.Plan(cols, m, opts.Buffer)
	visible := plan.Columns(cols)

	view := htmlView{
		Title:        opts.Title,
		EmptyMessage: opts.EmptyMessage,
		Hidden:       plan.Hidden,
		Total:        len(cols),
	}
	if view.EmptyMessage == "" {
		view.EmptyMessage = DefaultEmptyMessage
	}
	for _, c := range visible {
		view.Columns = append(view.Columns, htmlColumn{
			ID:    c.ID,
			Label: c.Header(),
			Align: string(alignOrLeft(c.Align)),
			Width: widthHint(c),
		})
	}
	for _, row := range rows {
		r := htmlRow{Cells: make([]htmlCell, len(visible))}
		for i, c := range visible {
			r.Cells[i] = htmlCell{Text: c.Cell(row), Align: string(alignOrLeft(c.Align))}
		}
		view.Rows = append(view.Rows, r)
	}

	if err := tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("render html table: %w", err)
	}
	return nil
}

// widthHint is the column's own width hint, "auto" when it has none. The
// resolved pixel width only drives column selection.
func widthHint(c columns.Descriptor) string {
	if w := strings.TrimSpace(c.Width); w != "" {
		return w
	}
	return "auto"
}

func alignOrLeft(a columns.Align) columns.Align {
	if a == "" {
		return columns.AlignLeft
	}
	return a
}
