package localindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-mesh/searchd/internal/contenthash"
	"github.com/lattice-mesh/searchd/internal/docresult"
	"github.com/lattice-mesh/searchd/internal/localindex"
	"github.com/lattice-mesh/searchd/internal/query"
)

// TestDocumentCountInvariant covers invariant 1: document_count() == |cids| − |folders|,
// across a mix of add_document and add_ancestor calls.
func TestDocumentCountInvariant(t *testing.T) {
	idx := localindex.New(nil)

	idx.AddAncestor("QmChild1", "child1", "QmRoot")
	idx.AddAncestor("QmChild2", "child2", "QmRoot")
	idx.AddDocument("QmChild1", localindex.DocumentReport{
		Occurrences: []localindex.TermOccurrence{{Term: "alpha", Category: docresult.Regular}},
	})

	docs := idx.Documents()
	folders := idx.Folders()
	_ = folders

	assert.Equal(t, idx.DocumentCount(), len(docs))

	// QmChild1 was un-marked as a folder by AddDocument; QmRoot and QmChild2 remain folders.
	assert.Contains(t, docs, contenthash.Hash("QmChild1"))
	assert.NotContains(t, docs, contenthash.Hash("QmRoot"))
	assert.NotContains(t, docs, contenthash.Hash("QmChild2"))
}

// TestFilterInvariant covers invariant 2: every term inserted via add_document is reported
// as present by the filter after update_filter.
func TestFilterInvariant(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddDocument("Qm1", localindex.DocumentReport{
		Occurrences: []localindex.TermOccurrence{
			{Term: "alpha", Category: docresult.Regular},
			{Term: "beta", Category: docresult.Strong},
		},
	})
	idx.UpdateFilter()

	f := idx.Filter()
	assert.True(t, f.ContainsAll([]string{"alpha"}))
	assert.True(t, f.ContainsAll([]string{"beta"}))
}

// TestMatchingDocsInvariant covers invariant 3: any indexed document containing query term
// t appears in matching_docs({t}).
func TestMatchingDocsInvariant(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddDocument("Qm1", localindex.DocumentReport{
		Occurrences: []localindex.TermOccurrence{{Term: "alpha", Category: docresult.Regular}},
	})

	out := idx.Search(&query.Query{RequiredTerms: []string{"alpha"}})
	var got []docresult.DocumentResult
	for r := range out {
		got = append(got, r)
	}
	require.Len(t, got, 1)
	assert.Equal(t, contenthash.Hash("Qm1"), got[0].Cid)
}

// TestScenarioS1 covers spec scenario S1: a single document round trip, asserting the
// regular-category count for the queried term is exactly 2.
func TestScenarioS1(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddDocument("Qm1", localindex.DocumentReport{
		Occurrences: []localindex.TermOccurrence{
			{Term: "alpha", Category: docresult.Regular},
			{Term: "alpha", Category: docresult.Regular},
			{Term: "beta", Category: docresult.Regular},
		},
		Filters: map[string]string{"lang": "en"},
	})
	idx.UpdateFilter()

	out := idx.Search(&query.Query{RequiredTerms: []string{"alpha"}})
	var results []docresult.DocumentResult
	for r := range out {
		results = append(results, r)
	}

	require.Len(t, results, 1)
	assert.Equal(t, contenthash.Hash("Qm1"), results[0].Cid)
	require.Len(t, results[0].TermCounts, 1)
	assert.Equal(t, 2, results[0].TermCounts[0].Regular)
}

// TestScenarioS2 covers spec scenario S2: a dns-pin-prefixed ancestor label is rewritten so
// that the path is rooted at the real domain with the trailing index suffix stripped.
func TestScenarioS2(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddAncestor("Qm2", "dns-pin-example.com/docs-0", "QmRoot")
	idx.AddDocument("Qm2", localindex.DocumentReport{})

	path := idx.BuildPath("Qm2")
	assert.Equal(t, [][]string{{"example.com", "docs"}}, path)
}

// TestBuildPathNonDNSPinPrependsRootHash covers spec §4.B's plain (non-dns-pin) case: a
// multi-hop ancestor chain has the resolved root ContentHash prepended rather than rewritten.
func TestBuildPathNonDNSPinPrependsRootHash(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddAncestor("QmFolder", "f-name", "QmRoot")
	idx.AddAncestor("QmDoc", "d-name", "QmFolder")
	idx.AddDocument("QmDoc", localindex.DocumentReport{})

	path := idx.BuildPath("QmDoc")
	assert.Equal(t, [][]string{{"QmRoot", "f-name", "d-name"}}, path)
}

// TestBuildPathMultipleParentsFanOut covers spec §4.B/§3's content-deduplication case: a cid
// reachable via two distinct parents must yield one path per parent, not an arbitrary pick.
func TestBuildPathMultipleParentsFanOut(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddAncestor("QmShared", "via-a", "QmRootA")
	idx.AddAncestor("QmShared", "via-b", "QmRootB")
	idx.AddDocument("QmShared", localindex.DocumentReport{})

	path := idx.BuildPath("QmShared")
	assert.ElementsMatch(t, [][]string{
		{"QmRootA", "via-a"},
		{"QmRootB", "via-b"},
	}, path)
}

// TestBuildPathUnknownCid covers the failure semantics of §4.B: an unknown cid yields nil,
// not a panic.
func TestBuildPathUnknownCid(t *testing.T) {
	idx := localindex.New(nil)
	assert.Nil(t, idx.BuildPath("QmUnknown"))
}

// TestAddDocumentDuplicateIsNoOp covers the documented no-op-with-warning behavior for a
// repeated add_document call on the same cid.
func TestAddDocumentDuplicateIsNoOp(t *testing.T) {
	idx := localindex.New(nil)
	idx.AddDocument("Qm1", localindex.DocumentReport{
		Occurrences: []localindex.TermOccurrence{{Term: "alpha", Category: docresult.Regular}},
	})
	idx.AddDocument("Qm1", localindex.DocumentReport{
		Occurrences: []localindex.TermOccurrence{{Term: "gamma", Category: docresult.Regular}},
	})

	assert.Equal(t, 1, idx.DocumentCount())

	out := idx.Search(&query.Query{RequiredTerms: []string{"gamma"}})
	var results []docresult.DocumentResult
	for r := range out {
		results = append(results, r)
	}
	assert.Empty(t, results)
}
