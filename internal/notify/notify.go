// Package notify carries explicit change notifications between the
// repositories that mutate data and the views that must refresh.
//
// A mutation reports the collections it touched as a Change. The Hub fans
// changes out to subscribers; the Cache drops entries belonging to changed
// collections. Neither side knows about the other.
package notify

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Collection names a refreshable set of data, e.g. "documents" or
// "document/<id>".
type Collection string

const (
	Documents      Collection = "documents"
	Cashflow       Collection = "cashflow"
	Counterparties Collection = "counterparties"
	Recurring      Collection = "recurring"
	TableColumns   Collection = "table_columns"
)

// Document names the collection of a single document.
func Document(id string) Collection { return Collection("document/" + id) }

// Payments names the payments of a single document.
func Payments(documentID string) Collection { return Collection("payments/" + documentID) }

// Matches reports whether c is covered by pattern. A pattern ending in "/"
// matches every collection with that prefix.
func (c Collection) Matches(pattern Collection) bool {
	if strings.HasSuffix(string(pattern), "/") {
		return strings.HasPrefix(string(c), string(pattern))
	}
	return c == pattern
}

// Change lists the collections affected by one mutation.
type Change struct {
	Collections []Collection
}

// NewChange builds a Change, dropping duplicates.
func NewChange(collections ...Collection) Change {
	out := make([]Collection, 0, len(collections))
	seen := make(map[Collection]bool, len(collections))
	for _, c := range collections {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return Change{Collections: out}
}

// Empty reports whether the change touches nothing.
func (c Change) Empty() bool { return len(c.Collections) == 0 }

// Merge returns the union of c and other.
func (c Change) Merge(other Change) Change {
	return NewChange(append(append([]Collection{}, c.Collections...), other.Collections...)...)
}

// Touches reports whether any collection of c matches any of patterns. No
// patterns matches everything.
func (c Change) Touches(patterns ...Collection) bool {
	if len(patterns) == 0 {
		return !c.Empty()
	}
	for _, col := range c.Collections {
		for _, p := range patterns {
			if col.Matches(p) {
				return true
			}
		}
	}
	return false
}

// DefaultBuffer is the channel capacity of each subscription.
const DefaultBuffer = 16

type subscriber struct {
	ch       chan Change
	patterns []Collection
}

// Hub fans changes out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the change and the drop is counted.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]*subscriber
	next    int
	buffer  int
	dropped atomic.Int64
}

// NewHub returns a hub whose subscriptions buffer size changes each.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = DefaultBuffer
	}
	return &Hub{subs: make(map[int]*subscriber), buffer: size}
}

// Subscribe registers interest in the given collections (all when none are
// given). The returned cancel func closes the channel and is idempotent.
func (h *Hub) Subscribe(patterns ...Collection) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	s := &subscriber{ch: make(chan Change, h.buffer), patterns: patterns}
	h.subs[id] = s

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Publish delivers c to every interested subscriber.
func (h *Hub) Publish(c Change) {
	if c.Empty() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if !c.Touches(s.patterns...) {
			continue
		}
		select {
		case s.ch <- c:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
