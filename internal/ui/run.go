package ui

import (
	"context"

	tea "charm.land/bubbletea/v2"
)

// Run starts the browser and blocks until the user quits or ctx is done.
// Extra ProgramOptions (custom IO, resize watchers) are passed to tea.NewProgram.
func Run(ctx context.Context, src Source, programOpts []tea.ProgramOption, opts ...Option) error {
	m := NewModel(ctx, src, opts...)
	defer m.Close()

	popts := append([]tea.ProgramOption{tea.WithContext(ctx)}, programOpts...)
	prog := tea.NewProgram(m, popts...)
	_, err := prog.Run()
	return err
}
