// Package ledger holds the bookkeeping domain model: documents, payments,
// counterparties, recurring rules and the cashflow events derived from them.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")
)

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the entity and id that were looked up.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}
