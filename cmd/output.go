package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/formatter"
	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/internal/limiter"
	"github.com/oakwood-commons/cashbook/internal/render"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// listFlags are the output flags shared by the list commands.
type listFlags struct {
	output string
	buffer int
	limit  limiter.Config
}

func (f *listFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "table", "output format: table|yaml|json|toml|html")
	fs.IntVar(&f.buffer, "buffer", -1, "pixels kept free when choosing columns (default from config)")
	fs.IntVar(&f.limit.Limit, "limit", 0, "limit the number of records displayed")
	fs.IntVar(&f.limit.Offset, "offset", 0, "skip the first N records")
	fs.IntVar(&f.limit.Tail, "tail", 0, "show the last N records (mutually exclusive with --limit; ignores --offset)")
}

func (f *listFlags) format() (formatter.Format, error) {
	if err := f.limit.Validate(); err != nil {
		return "", UsageError{Err: err}
	}
	format, err := formatter.ParseFormat(f.output)
	if err != nil {
		return "", UsageError{Err: err}
	}
	return format, nil
}

// writeList prints items as a width-aware table, an HTML page or an export.
// key names the TOML array the items are nested under.
func writeList[T any](cmd *cobra.Command, o *rootOptions, f *listFlags, title, key string, items []T, cols []columns.Descriptor) error {
	format, err := f.format()
	if err != nil {
		return err
	}
	total := len(items)
	items = limiter.Apply(f.limit, items)
	w := cmd.OutOrStdout()

	switch format {
	case formatter.FormatTable:
		fmt.Fprint(w, renderTable(o, items, cols, f.buffer))
		if s := f.limit.Summary(total); s != "" {
			fmt.Fprintln(w, s)
		}
		return nil
	case formatter.FormatHTML:
		return render.HTML(w, toRows(items), cols, render.HTMLOptions{
			Title:   title,
			WidthPx: layout.CellsToPixels(o.run.Width, o.cellWidth()),
			Buffer:  o.buffer(f.buffer),
		})
	default:
		return export(w, items, format, key)
	}
}

func renderTable[T any](o *rootOptions, items []T, cols []columns.Descriptor, buffer int) string {
	opts := render.DefaultOptions()
	opts.Width = o.width()
	opts.CellWidth = o.cellWidth()
	opts.Buffer = o.buffer(buffer)
	opts.NoColor = o.run.NoColor
	return render.Table(toRows(items), cols, opts)
}

func export(w io.Writer, v any, format formatter.Format, key string) error {
	out, err := formatter.Export(v, format, key)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func toRows[T any](items []T) []any {
	rows := make([]any, len(items))
	for i, it := range items {
		rows[i] = it
	}
	return rows
}
