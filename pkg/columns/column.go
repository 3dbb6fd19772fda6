// Package columns decides which table columns fit into a container of a given
// width. A column set is described once per table and evaluated against every
// new width measurement; evaluation is pure and safe for concurrent use.
package columns

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Align controls horizontal alignment of a column. It is cosmetic and never
// consulted by the selector.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// ParseAlign maps a configuration string onto an Align, defaulting to left.
func ParseAlign(s string) Align {
	switch Align(strings.ToLower(strings.TrimSpace(s))) {
	case AlignRight:
		return AlignRight
	case AlignCenter:
		return AlignCenter
	default:
		return AlignLeft
	}
}

// Formatter turns a raw cell value into display text. row is the whole record
// the value was read from, so formatters can consult sibling fields (for
// example the currency of an amount).
type Formatter func(raw any, row any) string

// AccessorKind tells which variant an Accessor holds.
type AccessorKind int

const (
	AccessorNone AccessorKind = iota
	AccessorField
	AccessorFunc
)

// Accessor reads the raw value of a column from a row. It is either a field
// name or a pure function; construct it with Field or Func.
type Accessor struct {
	kind  AccessorKind
	field string
	fn    func(row any) any
}

// Field returns an accessor that reads the named field of a row.
func Field(name string) Accessor {
	return Accessor{kind: AccessorField, field: name}
}

// Func returns an accessor backed by fn.
func Func(fn func(row any) any) Accessor {
	if fn == nil {
		return Accessor{}
	}
	return Accessor{kind: AccessorFunc, fn: fn}
}

// Kind reports the accessor variant.
func (a Accessor) Kind() AccessorKind { return a.kind }

// FieldName returns the field name for field accessors and "" otherwise.
func (a Accessor) FieldName() string { return a.field }

// FieldGetter is implemented by rows that resolve field names themselves.
// Field accessors prefer it over map lookup and reflection.
type FieldGetter interface {
	FieldValue(name string) (any, bool)
}

// Value reads the raw value from row. Missing fields yield nil.
func (a Accessor) Value(row any) any {
	switch a.kind {
	case AccessorFunc:
		return a.fn(row)
	case AccessorField:
		return fieldValue(row, a.field)
	default:
		return nil
	}
}

func fieldValue(row any, name string) any {
	if row == nil || name == "" {
		return nil
	}
	if g, ok := row.(FieldGetter); ok {
		v, _ := g.FieldValue(name)
		return v
	}
	if m, ok := row.(map[string]any); ok {
		return m[name]
	}

	rv := reflect.ValueOf(row)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if tagName(f, "json") == name || tagName(f, "yaml") == name || strings.EqualFold(f.Name, name) {
			return rv.Field(i).Interface()
		}
	}
	return nil
}

func tagName(f reflect.StructField, key string) string {
	tag := f.Tag.Get(key)
	if tag == "" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// Descriptor is the immutable description of one displayable column.
type Descriptor struct {
	// ID is unique within a column set and keys visibility results.
	ID string
	// Label is the header text; the selector ignores it.
	Label string
	// Priority 0 means always visible. Higher numbers are dropped first.
	Priority int
	// Accessor reads the raw value from a row.
	Accessor Accessor
	// Width is an optional textual width hint such as "120", "120px" or "30%".
	Width string
	// Align is cosmetic.
	Align Align
	// Formatter is optional; without it the raw value is printed with fmt.
	Formatter Formatter
}

// Value reads the raw value of this column from row.
func (d Descriptor) Value(row any) any {
	return d.Accessor.Value(row)
}

// Cell returns the display text of this column for row.
func (d Descriptor) Cell(row any) string {
	raw := d.Value(row)
	if d.Formatter != nil {
		return d.Formatter(raw, row)
	}
	if raw == nil {
		return ""
	}
	return fmt.Sprint(raw)
}

// Header returns Label, falling back to ID.
func (d Descriptor) Header() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

var (
	// ErrEmptyID is reported for descriptors without an id.
	ErrEmptyID = errors.New("column id is empty")
	// ErrDuplicateID is reported when two descriptors share an id.
	ErrDuplicateID = errors.New("duplicate column id")
	// ErrNegativePriority is reported for priorities below zero.
	ErrNegativePriority = errors.New("negative column priority")
)

// Validate checks the invariants of a column set. The selector itself accepts
// any input; Validate is for the code that builds sets from configuration.
func Validate(cols []Descriptor) error {
	var errs []error
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("column %d: %w", i, ErrEmptyID))
			continue
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("column %q: %w", c.ID, ErrDuplicateID))
		}
		seen[c.ID] = true
		if c.Priority < 0 {
			errs = append(errs, fmt.Errorf("column %q (priority %d): %w", c.ID, c.Priority, ErrNegativePriority))
		}
	}
	return errors.Join(errs...)
}

// Lookup maps ids back to their descriptors, in the order of ids. Unknown ids
// are skipped.
func Lookup(cols []Descriptor, ids []string) []Descriptor {
	byID := make(map[string]Descriptor, len(cols))
	for _, c := range cols {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = c
		}
	}
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Keep returns the descriptors of cols whose id is in ids, in the order of
// cols. Renderers use it to paint the visible set in display order.
func Keep(cols []Descriptor, ids []string) []Descriptor {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]Descriptor, 0, len(ids))
	for _, c := range cols {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// IDs returns the ids of cols in input order.
func IDs(cols []Descriptor) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.ID
	}
	return out
}
