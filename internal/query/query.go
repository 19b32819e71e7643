// Package query models a parsed user query: the routing predicate evaluated against a
// peer's advertised Filter, and the local matching function evaluated against a
// LocalIndex's postings.
package query

import (
	"sort"

	"github.com/lattice-mesh/searchd/internal/filter"
	"github.com/lattice-mesh/searchd/internal/indextypes"
)

// Query is a set of required terms and an optional set of required (key, value) filter
// constraints, plus routing/ranking metadata.
type Query struct {
	RequiredTerms   []string
	RequiredFilters []indextypes.FilterKey

	// Language is the caller's preferred language, compared against a document's lang=
	// filter attribute by the ranker's lang_score signal.
	Language string
	// MaxResults caps how many results a caller wants back; zero means unlimited.
	MaxResults int
}

// MatchScore counts how many of q's required terms are present in f. Peers use this to
// decide whether the local node is worth forwarding a query to.
func (q *Query) MatchScore(f *filter.Filter) uint32 {
	return f.MatchScore(q.RequiredTerms)
}

// TermsIndex is the shape of LocalIndex's term postings that MatchingDocs needs: term ->
// LocalCid -> normalized frequency.
type TermsIndex map[string]map[indextypes.LocalCid]float32

// FiltersIndex is the shape of LocalIndex's categorical postings: (key,value) -> ordered
// LocalCids.
type FiltersIndex map[indextypes.FilterKey][]indextypes.LocalCid

// MatchingDocs returns every LocalCid present in the posting list of every required term
// and every required (key,value) pair, in ascending LocalCid order. Because it is computed
// as a set intersection, duplicates are impossible.
func (q *Query) MatchingDocs(terms TermsIndex, filters FiltersIndex) []indextypes.LocalCid {
	if len(q.RequiredTerms) == 0 && len(q.RequiredFilters) == 0 {
		return nil
	}

	var candidates map[indextypes.LocalCid]struct{}
	intersect := func(set map[indextypes.LocalCid]struct{}) {
		if candidates == nil {
			candidates = set
			return
		}
		for lcid := range candidates {
			if _, ok := set[lcid]; !ok {
				delete(candidates, lcid)
			}
		}
	}

	for _, term := range q.RequiredTerms {
		postings := terms[term]
		set := make(map[indextypes.LocalCid]struct{}, len(postings))
		for lcid := range postings {
			set[lcid] = struct{}{}
		}
		intersect(set)
		if len(candidates) == 0 {
			return nil
		}
	}

	for _, fk := range q.RequiredFilters {
		ids := filters[fk]
		set := make(map[indextypes.LocalCid]struct{}, len(ids))
		for _, lcid := range ids {
			set[lcid] = struct{}{}
		}
		intersect(set)
		if len(candidates) == 0 {
			return nil
		}
	}

	result := make([]indextypes.LocalCid, 0, len(candidates))
	for lcid := range candidates {
		result = append(result, lcid)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
