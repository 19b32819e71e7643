package docresult

import "github.com/lattice-mesh/searchd/internal/contenthash"

// ProviderID identifies the peer that returned a given result. No cryptographic property
// is required of it (§9); when the overlay is libp2p-backed it is typically a peer.ID
// string, but the core treats it as opaque.
type ProviderID string

// DocumentResult is the wire-level result record produced both by a local search and by a
// remote peer streaming results back through the overlay.
type DocumentResult struct {
	Cid         contenthash.Hash
	Paths       [][]string
	IconHash    contenthash.Hash // empty when absent
	Domain      string           // empty when absent
	Title       string
	Description string
	// Language is the document's lang= filter attribute, if the crawler reported one.
	Language string

	// TermCounts holds, for each term in the query that produced this result (in the same
	// order), the structural breakdown of how many times that term occurs in the document.
	TermCounts []WordCount
	// WordCount is the document's own total structural word count.
	WordCount WordCount
}

// TermFrequency computes tf = (sum of weighted term occurrence counts) / (weighted total
// word count). Division by zero yields 0, matching the spec's explicit edge case.
func (d DocumentResult) TermFrequency() float64 {
	denom := d.WordCount.WeightedSum()
	if denom == 0 {
		return 0
	}
	var num float64
	for _, tc := range d.TermCounts {
		num += tc.WeightedSum()
	}
	return num / denom
}
