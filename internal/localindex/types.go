// Package localindex implements the authoritative in-process store of crawled documents:
// inverted postings by term, categorical postings by (key,value), the ancestor graph used
// to reconstruct storage-network paths, and the membership Filter advertised to peers.
package localindex

import (
	"github.com/lattice-mesh/searchd/internal/contenthash"
	"github.com/lattice-mesh/searchd/internal/docresult"
)

// TermOccurrence tags a single occurrence of a term with the structural category it was
// found in (e.g. an <h2> heading, or regular body text).
type TermOccurrence struct {
	Term     string
	Category docresult.Category
}

// DocumentReport is the extraction output for one document: every term occurrence tagged
// with its structural category, the categorical (key,value) attributes the crawler
// discovered (e.g. lang=en), and identifying metadata.
type DocumentReport struct {
	Occurrences []TermOccurrence
	Filters     map[string]string

	Title       string
	Description string
	IconHash    contenthash.Hash // empty when absent
	Domain      string           // empty when absent
}
