// Package filter narrows review lists by free-text search and
// categorical facets. Filtering is pure and stable: the input slice is
// never mutated and survivors keep their relative order.
package filter

import (
	"strings"
)

// FacetAll is the facet value that matches every record.
const FacetAll = "all"

// Record is anything the engine can filter. SearchText returns the
// fields the free-text query matches against; Facet returns the value
// of one categorical dimension, with ok=false for unknown dimensions.
type Record interface {
	SearchText() []string
	Facet(name string) (value string, ok bool)
}

// Spec is one filter selection: an optional free-text query plus zero
// or more facet selections.
type Spec struct {
	Query  string
	Facets map[string]string
}

// Apply returns the records matching spec, in their original order.
// The result is always a fresh slice, never a view of records.
func Apply[T Record](spec Spec, records []T) []T {
	query := strings.ToLower(strings.TrimSpace(spec.Query))

	out := make([]T, 0, len(records))
	for _, r := range records {
		if !matchesQuery(query, r) {
			continue
		}
		if !matchesFacets(spec.Facets, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesQuery reports whether any search field contains the query,
// case-insensitively. A blank query matches everything.
func matchesQuery(query string, r Record) bool {
	if query == "" {
		return true
	}
	for _, field := range r.SearchText() {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// matchesFacets requires every selected facet to match exactly. The
// "all" sentinel and the blank selection are both no-ops. A selection
// on a dimension the record does not expose matches nothing.
func matchesFacets(facets map[string]string, r Record) bool {
	for name, want := range facets {
		if want == "" || want == FacetAll {
			continue
		}
		got, ok := r.Facet(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}
