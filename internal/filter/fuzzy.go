package filter

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/oakwood-commons/cashbook/internal/ledger"
)

type ranked struct {
	doc      ledger.DocumentEnhanced
	distance int
}

// Fuzzy keeps the documents whose title, number or counterparty fuzzily
// matches query, closest match first. Equal ranks keep their input order.
// A blank query returns docs unchanged.
func Fuzzy(query string, docs []ledger.DocumentEnhanced) []ledger.DocumentEnhanced {
	query = strings.TrimSpace(query)
	if query == "" {
		return docs
	}

	matches := make([]ranked, 0, len(docs))
	for _, d := range docs {
		if dist, ok := bestRank(query, d.Title, d.Number, d.DisplayCounterparty()); ok {
			matches = append(matches, ranked{doc: d, distance: dist})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]ledger.DocumentEnhanced, len(matches))
	for i, m := range matches {
		out[i] = m.doc
	}
	return out
}

func bestRank(query string, targets ...string) (int, bool) {
	best, found := 0, false
	for _, t := range targets {
		if t == "" {
			continue
		}
		dist := fuzzy.RankMatchNormalizedFold(query, t)
		if dist < 0 {
			continue
		}
		if !found || dist < best {
			best, found = dist, true
		}
	}
	return best, found
}
