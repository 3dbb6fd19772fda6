// Package cmd implements the cashbook command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/config"
	"github.com/oakwood-commons/cashbook/internal/formatter"
	"github.com/oakwood-commons/cashbook/internal/layout"
	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/store"
	"github.com/oakwood-commons/cashbook/pkg/core"
	"github.com/oakwood-commons/cashbook/pkg/logger"
	"github.com/oakwood-commons/cashbook/pkg/settings"
)

// rootOptions is the state shared by every command of one invocation.
type rootOptions struct {
	run   *settings.Run
	debug bool

	cfg     config.Config
	cfgPath string

	// today overrides the engine clock in tests.
	today func() ledger.Date
}

// UsageError marks errors caused by invalid flags or arguments.
type UsageError struct{ Err error }

func (e UsageError) Error() string { return e.Err.Error() }
func (e UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...any) error {
	return UsageError{Err: fmt.Errorf(format, args...)}
}

// IsUsageError reports whether err should exit with status 2.
func IsUsageError(err error) bool {
	var ue UsageError
	return errors.As(err, &ue) || errors.Is(err, ledger.ErrValidation)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{run: settings.NewCliParams()})
}

func newRootCmd(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Track payables, receivables and the cashflow they add up to",
		Long: `cashbook records invoices, taxes and other documents you owe or are owed,
tracks payments against them and projects the cashflow of the coming days.

Tables only show the columns that fit the terminal width. Less important
columns are dropped first; "documents show" lists every field.`,
		Example: `
  cashbook documents add --kind ap_invoice --direction out --title "Office rent" --gross 1230.00 --due 2025-03-10
  cashbook documents list --status overdue
  cashbook documents list --where 'doc.remaining > 1000.0' -o yaml
  cashbook cashflow --days 30 --view timeline
  cashbook browse`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.run.DatabasePath, "db", "", "path to the SQLite database (default from config or the XDG data directory)")
	pf.StringVar(&o.run.ConfigFile, "config-file", "", "path to a YAML config file")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&o.run.NoColor, "no-color", false, "disable color output")
	pf.IntVar(&o.run.Width, "width", 0, "output width in columns (default: terminal width)")
	pf.StringVar(&o.run.Currency, "currency", "", "currency for new records (default from config)")

	root.SetVersionTemplate("{{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError{Err: err}
	})

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(o),
		newDocumentsCmd(o),
		newPaymentsCmd(o),
		newCounterpartiesCmd(o),
		newRecurringCmd(o),
		newDashboardCmd(o),
		newCashflowCmd(o),
		newColumnsCmd(o),
		newBrowseCmd(o),
	)
	return root
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// setup initializes the logger, the run settings and the configuration.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
	if o.debug {
		o.run.MinLogLevel = -1
	}
	lgr := logger.Get(o.run.MinLogLevel)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, o.run)
	cmd.SetContext(ctx)

	cfg, path, err := config.Load(o.run.ConfigFile)
	if err != nil {
		return err
	}
	if c := strings.TrimSpace(o.run.Currency); c != "" {
		cfg.Currency = strings.ToUpper(c)
	}
	if o.run.DatabasePath != "" {
		cfg.Database = o.run.DatabasePath
	}
	if err := cfg.Validate(); err != nil {
		return UsageError{Err: err}
	}
	if err := formatter.SetLocale(cfg.Locale); err != nil {
		return err
	}
	o.cfg, o.cfgPath = cfg, path
	if path != "" {
		lgr.V(1).Info("configuration loaded", "config_file", path)
	}
	return nil
}

// openEngine opens the configured database.
func (o *rootOptions) openEngine(ctx context.Context) (*core.Engine, error) {
	path, err := o.cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	lgr := logger.FromContext(ctx)

	opts := []core.Option{
		core.WithOverrides(o.cfg.Overrides()),
		core.WithHorizonDays(o.cfg.HorizonDays),
		core.WithLogger(*lgr),
	}
	if o.today != nil {
		opts = append(opts, core.WithToday(o.today))
	}
	e, err := core.Open(ctx, path, []store.Option{store.WithDefaultCurrency(o.cfg.Currency)}, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	lgr.V(1).Info("database opened", logger.DatabaseKey, path)
	return e, nil
}

// withEngine opens the database, brings document statuses up to date and
// runs fn.
func (o *rootOptions) withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *core.Engine) error) error {
	ctx := cmd.Context()
	e, err := o.openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); cerr != nil {
			logger.FromContext(ctx).Error(cerr, "close database")
		}
	}()
	if _, err := e.Refresh(ctx); err != nil {
		return err
	}
	return fn(ctx, e)
}

// width is --width, else the terminal width, else 0 (every column shown).
func (o *rootOptions) width() int {
	if o.run.Width > 0 {
		return o.run.Width
	}
	if w, ok := layout.TerminalCells(); ok {
		return w
	}
	return 0
}

func (o *rootOptions) cellWidth() int {
	if o.cfg.Layout.CellWidth > 0 {
		return o.cfg.Layout.CellWidth
	}
	return layout.DefaultCellWidth
}

// buffer is flag when set (>= 0), else the configured buffer.
func (o *rootOptions) buffer(flag int) int {
	if flag >= 0 {
		return flag
	}
	return o.cfg.Layout.Buffer
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print cashbook version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return nil
		},
	}
}
