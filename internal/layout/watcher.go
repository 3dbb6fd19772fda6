package layout

import (
	"context"
	"time"
)

// DefaultPollInterval is how often a Watcher re-measures the terminal.
const DefaultPollInterval = 250 * time.Millisecond

// SizeFunc reports the width and height of the terminal behind fd.
type SizeFunc func(fd int) (width, height int, err error)

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// Watcher polls a terminal for width changes. Polling works where resize
// signals are unreliable, such as piped stdin or Windows consoles.
type Watcher struct {
	fd        int
	cellWidth int
	interval  time.Duration
	size      SizeFunc
	newTicker func(time.Duration) ticker
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithCellWidth sets the pixel width of one cell.
func WithCellWidth(px int) WatcherOption {
	return func(w *Watcher) {
		if px > 0 {
			w.cellWidth = px
		}
	}
}

// WithSizeFunc replaces the terminal size probe.
func WithSizeFunc(fn SizeFunc) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.size = fn
		}
	}
}

// withTicker replaces the ticker; tests drive it by hand.
func withTicker(fn func(time.Duration) ticker) WatcherOption {
	return func(w *Watcher) { w.newTicker = fn }
}

// NewWatcher returns a Watcher for the terminal behind fd.
func NewWatcher(fd int, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		fd:        fd,
		cellWidth: DefaultCellWidth,
		interval:  DefaultPollInterval,
		size:      termGetSize,
		newTicker: func(d time.Duration) ticker { return realTicker{Ticker: time.NewTicker(d)} },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Measure probes the terminal once.
func (w *Watcher) Measure() Measurement {
	cells, _, err := w.size(w.fd)
	if err != nil || cells <= 0 {
		return Unmeasured
	}
	return Measured(CellsToPixels(cells, w.cellWidth))
}

// Watch emits a Measurement every time the width changes, starting with the
// first successful probe. Failed probes are skipped. The channel is closed
// once ctx is done.
func (w *Watcher) Watch(ctx context.Context) <-chan Measurement {
	out := make(chan Measurement, 1)
	go func() {
		defer close(out)
		t := w.newTicker(w.interval)
		defer t.Stop()

		last := Unmeasured
		emit := func() bool {
			m := w.Measure()
			if !m.Measured || m == last {
				return true
			}
			last = m
			select {
			case out <- m:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				if !emit() {
					return
				}
			}
		}
	}()
	return out
}
