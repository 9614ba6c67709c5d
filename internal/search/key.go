// Package search orchestrates the full pipeline for one query:
// cache lookup, paginated discovery, concurrent enrichment, scoring,
// persistence and result accumulation.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

var keyFolder = cases.Fold()

// CanonicalKey normalizes a query into the cache key: Unicode case
// folding plus whitespace collapse. Queries that differ only in case
// or spacing share one accumulated record.
func CanonicalKey(query string) string {
	folded := keyFolder.String(query)
	return strings.Join(strings.Fields(folded), " ")
}
