package cmd

import (
	"context"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/cashbook/internal/filter"
	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/internal/ui"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

var (
	stdinIsPiped     = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

func newBrowseCmd(o *rootOptions) *cobra.Command {
	var (
		filters filter.Filters
		where   string
		buffer  int
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse documents in an interactive table",
		Long: `Browse documents in a full-screen table that keeps only the columns that fit
the terminal and re-selects them when the window is resized.

Keys:
  ↑/↓ j/k   move
  /         fuzzy filter (enter keeps it, esc clears it)
  enter     show every field of the document
  y         copy the document number
  r         reload
  q         quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filters.Store()
			if err != nil {
				return UsageError{Err: err}
			}
			q := core.DocumentQuery{Filter: f, Where: where}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				popts, cleanup := o.getProgramOptions(ctx)
				defer cleanup()
				return ui.Run(ctx, e, popts,
					ui.WithQuery(q),
					ui.WithNoColor(o.run.NoColor),
					ui.WithLayout(o.cellWidth(), o.buffer(buffer)),
				)
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&filters.Kind, "kind", "", "only documents of this kind")
	fs.StringVar(&filters.Status, "status", "", "only documents with this status")
	fs.StringVar(&filters.Direction, "direction", "", "only IN or OUT documents")
	fs.StringVar(&where, "where", "", "CEL expression over 'doc'")
	fs.IntVar(&buffer, "buffer", -1, "pixels kept free when choosing columns (default from config)")
	return cmd
}

// getProgramOptions returns Bubble Tea options for the terminal at hand. When
// stdin is piped, the real terminal is opened for keys and output, and its
// width is polled since resize signals may not arrive.
func (o *rootOptions) getProgramOptions(ctx context.Context) ([]tea.ProgramOption, func()) {
	var opts []tea.ProgramOption
	if o.run.Width > 0 {
		// --width pins the layout; the height still comes from the terminal.
		opts = append(opts, tea.WithWindowSize(o.run.Width, 24))
	}
	if !stdinIsPiped() {
		return opts, func() {}
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// /dev/tty not available (e.g., in some CI environments)
		// Fall back to piped stdin - TUI will work but arrow keys/resize won't
		return opts, func() {}
	}
	cleanup := func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	opts = append(opts, tea.WithInput(ttyIn))
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), o.withTTYResizeWatcher(ctx, ttyOut))
	}
	return opts, func() {
		cancel()
		cleanup()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls the terminal width and sends resize messages when
// signals are unreliable (e.g., piped stdin on Windows). It stops when ctx is
// canceled.
func (o *rootOptions) withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}
		fd := int(out.Fd())
		w := layout.NewWatcher(fd, layout.WithCellWidth(o.cellWidth()), layout.WithSizeFunc(termGetSize))

		go func() {
			for m := range w.Watch(ctx) {
				// The watcher tracks width; height is read alongside it.
				_, height, _ := termGetSize(fd)
				cells := layout.PixelsToCells(m.Width, o.cellWidth())
				sendWindowSize(p, tea.WindowSizeMsg{Width: cells, Height: height})
			}
		}()
	}
}
