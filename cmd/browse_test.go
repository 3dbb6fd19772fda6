package cmd

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/internal/config"
	"github.com/oakwood-commons/cashbook/pkg/settings"
)

func stubTerminal(t *testing.T, piped bool, open func() (*os.File, *os.File, error)) {
	t.Helper()
	origPiped, origOpen := stdinIsPiped, openTerminalIOFn
	stdinIsPiped = func() bool { return piped }
	openTerminalIOFn = open
	t.Cleanup(func() {
		stdinIsPiped, openTerminalIOFn = origPiped, origOpen
	})
}

func testOptions(width int) *rootOptions {
	o := &rootOptions{run: settings.NewCliParams()}
	o.run.Width = width
	o.cfg.Layout = config.Layout{Buffer: 40, CellWidth: 8}
	return o
}

func TestGetProgramOptions(t *testing.T) {
	tests := []struct {
		name  string
		width int
		piped bool
		open  func() (*os.File, *os.File, error)
		want  int
	}{
		{name: "terminal stdin", want: 0},
		{name: "terminal stdin with width", width: 120, want: 1},
		{
			name:  "piped without tty",
			piped: true,
			open:  func() (*os.File, *os.File, error) { return nil, nil, errors.New("no tty") },
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubTerminal(t, tt.piped, tt.open)
			opts, cleanup := testOptions(tt.width).getProgramOptions(context.Background())
			defer cleanup()
			assert.Len(t, opts, tt.want)
		})
	}
}

func TestGetProgramOptionsPipedWithTTY(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stubTerminal(t, true, func() (*os.File, *os.File, error) { return r, w, nil })

	opts, cleanup := testOptions(0).getProgramOptions(context.Background())
	// input, output and the resize watcher
	assert.Len(t, opts, 3)
	cleanup()

	_, err = w.Write([]byte("x"))
	assert.Error(t, err, "cleanup closes the terminal files")
}

func TestTerminalDeviceNames(t *testing.T) {
	in, out := terminalDeviceNames("windows")
	assert.Equal(t, "CONIN$", in)
	assert.Equal(t, "CONOUT$", out)

	in, out = terminalDeviceNames("linux")
	assert.Equal(t, "/dev/tty", in)
	assert.Equal(t, "/dev/tty", out)
}
