// Package filter narrows document lists: exact store filters, fuzzy ranking
// and CEL boolean expressions over a document's fields.
package filter

import (
	"strings"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/store"
)

// Filters holds the raw flag values of a document listing.
type Filters struct {
	Kind      string
	Status    string
	Direction string
	Search    string
}

// Store validates the enum filters and converts them to a store query.
// Empty values do not filter.
func (f Filters) Store() (store.DocumentFilter, error) {
	var (
		out store.DocumentFilter
		err error
	)
	if strings.TrimSpace(f.Kind) != "" {
		if out.Kind, err = ledger.ParseDocumentKind(f.Kind); err != nil {
			return store.DocumentFilter{}, err
		}
	}
	if strings.TrimSpace(f.Status) != "" {
		if out.Status, err = ledger.ParseDocumentStatus(f.Status); err != nil {
			return store.DocumentFilter{}, err
		}
	}
	if strings.TrimSpace(f.Direction) != "" {
		if out.Direction, err = ledger.ParseDirection(f.Direction); err != nil {
			return store.DocumentFilter{}, err
		}
	}
	out.Search = strings.TrimSpace(f.Search)
	return out, nil
}
