// Package registry turns the per-table column configuration into column
// descriptors with accessors and formatters attached.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// DefaultTTL is how long resolved column sets stay cached.
const DefaultTTL = 15 * time.Minute

// Source lists the active column rows of a table in display order.
type Source interface {
	List(ctx context.Context, table string) ([]ledger.TableColumn, error)
}

// Override adjusts a column from configuration. Zero fields keep the
// stored value.
type Override struct {
	Priority *int   `yaml:"priority,omitempty" json:"priority,omitempty"`
	Width    string `yaml:"width,omitempty" json:"width,omitempty"`
	Label    string `yaml:"label,omitempty" json:"label,omitempty"`
	Align    string `yaml:"align,omitempty" json:"align,omitempty"`
	Hidden   bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
}

// Overrides maps table name to column id to Override.
type Overrides map[string]map[string]Override

// Registry resolves column sets per table.
type Registry struct {
	src       Source
	cache     *notify.Cache
	overrides Overrides
}

// Option configures a Registry.
type Option func(*Registry)

// WithCache shares a cache; by default each Registry owns one with DefaultTTL.
func WithCache(c *notify.Cache) Option {
	return func(r *Registry) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithOverrides applies configuration overrides to every resolved set.
func WithOverrides(o Overrides) Option {
	return func(r *Registry) { r.overrides = o }
}

// New returns a Registry reading from src.
func New(src Source, opts ...Option) *Registry {
	r := &Registry{src: src, cache: notify.NewCache(DefaultTTL)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache exposes the cache so callers can invalidate it on changes.
func (r *Registry) Cache() *notify.Cache { return r.cache }

// Columns returns the descriptors of table. Results are cached until the
// TTL passes or a change touching table_columns is applied.
func (r *Registry) Columns(ctx context.Context, table string) ([]columns.Descriptor, error) {
	return notify.GetOrLoad(r.cache, notify.TableColumns, table, func() ([]columns.Descriptor, error) {
		rows, err := r.src.List(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("load columns of %s: %w", table, err)
		}
		if len(rows) == 0 {
			rows = Defaults(table)
		}
		return Descriptors(table, applyOverrides(rows, r.overrides[table]))
	})
}

// Descriptors converts column rows to descriptors. Rows are expected in
// display order; the set is validated before it is returned.
func Descriptors(table string, rows []ledger.TableColumn) ([]columns.Descriptor, error) {
	builtins := builtinAccessors[table]
	out := make([]columns.Descriptor, 0, len(rows))
	for _, row := range rows {
		d := columns.Descriptor{
			ID:        row.ColumnID,
			Label:     row.Label,
			Priority:  row.Priority,
			Width:     row.Width,
			Align:     columns.ParseAlign(row.Align),
			Formatter: formatterFor(row.ColumnID),
		}
		switch {
		case row.Accessor != "":
			d.Accessor = columns.Field(row.Accessor)
		case builtins[row.ColumnID] != nil:
			d.Accessor = columns.Func(builtins[row.ColumnID])
		default:
			d.Accessor = columns.Field(row.ColumnID)
		}
		out = append(out, d)
	}
	if err := columns.Validate(out); err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	return out, nil
}

// Builtin returns the descriptors of the built-in set of table.
func Builtin(table string) ([]columns.Descriptor, error) {
	rows := Defaults(table)
	if rows == nil {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return Descriptors(table, rows)
}

func applyOverrides(rows []ledger.TableColumn, overrides map[string]Override) []ledger.TableColumn {
	if len(overrides) == 0 {
		return rows
	}
	out := make([]ledger.TableColumn, 0, len(rows))
	for _, row := range rows {
		o, ok := overrides[row.ColumnID]
		if !ok {
			out = append(out, row)
			continue
		}
		if o.Hidden {
			continue
		}
		if o.Priority != nil {
			row.Priority = *o.Priority
		}
		if o.Width != "" {
			row.Width = o.Width
		}
		if o.Label != "" {
			row.Label = o.Label
		}
		if o.Align != "" {
			row.Align = o.Align
		}
		out = append(out, row)
	}
	return out
}
