package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-mesh/searchd/internal/filter"
	"github.com/lattice-mesh/searchd/internal/indextypes"
	"github.com/lattice-mesh/searchd/internal/query"
)

func TestMatchScoreCountsPresentRequiredTerms(t *testing.T) {
	f := filter.New()
	f.Add("alpha")
	f.Add("gamma")

	q := &query.Query{RequiredTerms: []string{"alpha", "beta"}}
	assert.Equal(t, uint32(1), q.MatchScore(f))
}

// TestMatchingDocsIsIntersection covers invariant 3: any indexed document d containing
// query term t must appear in matching_docs({t}).
func TestMatchingDocsIsIntersection(t *testing.T) {
	terms := query.TermsIndex{
		"alpha": {1: 0.5, 2: 0.25, 3: 0.1},
		"beta":  {2: 0.5, 3: 0.2},
	}
	filters := query.FiltersIndex{
		{Key: "lang", Value: "en"}: {1, 2},
	}

	q := &query.Query{RequiredTerms: []string{"alpha"}}
	got := q.MatchingDocs(terms, filters)
	require.Equal(t, []indextypes.LocalCid{1, 2, 3}, got)

	q2 := &query.Query{RequiredTerms: []string{"alpha", "beta"}}
	got2 := q2.MatchingDocs(terms, filters)
	assert.Equal(t, []indextypes.LocalCid{2, 3}, got2)

	q3 := &query.Query{RequiredTerms: []string{"alpha"}, RequiredFilters: []indextypes.FilterKey{{Key: "lang", Value: "en"}}}
	got3 := q3.MatchingDocs(terms, filters)
	assert.Equal(t, []indextypes.LocalCid{1, 2}, got3)
}

func TestMatchingDocsNoConstraintsReturnsNothing(t *testing.T) {
	q := &query.Query{}
	got := q.MatchingDocs(query.TermsIndex{"alpha": {1: 1}}, query.FiltersIndex{})
	assert.Empty(t, got)
}

func TestMatchingDocsMissingTermReturnsNothing(t *testing.T) {
	q := &query.Query{RequiredTerms: []string{"nope"}}
	got := q.MatchingDocs(query.TermsIndex{"alpha": {1: 1}}, query.FiltersIndex{})
	assert.Empty(t, got)
}
