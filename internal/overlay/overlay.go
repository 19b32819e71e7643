// Package overlay declares the contracts the core depends on but does not implement: the
// content-addressed storage client, the peer-to-peer query dispatcher, and the document
// extractor. Concrete adapters for these live outside the core; cmd/searchd wires none of
// them by default.
package overlay

import (
	"context"

	"github.com/lattice-mesh/searchd/internal/contenthash"
	"github.com/lattice-mesh/searchd/internal/docresult"
)

// DAGNode is a minimal (Name, Value) tree node as returned by StorageClient.GetDAG. Value is
// opaque content bytes; Children enumerates named links to other DAG nodes.
type DAGNode struct {
	Value    []byte
	Children map[string]contenthash.Hash
}

// StorageClient is the RPC contract to the content-addressed storage node. All methods are
// fallible with an error condition describing the transport failure; callers should expect
// Transient-kind errors (see Kind in errors.go) on any network hiccup.
type StorageClient interface {
	ListPinned(ctx context.Context) ([]contenthash.Hash, error)
	GetDAG(ctx context.Context, cid contenthash.Hash) (DAGNode, error)
	PutDAG(ctx context.Context, data []byte, pin bool) (contenthash.Hash, error)
	AddPin(ctx context.Context, cid contenthash.Hash) error
	RemovePin(ctx context.Context, cid contenthash.Hash) error
}

// Query is the minimal shape SearchController needs of a query to dispatch it on the wire;
// it mirrors internal/query.Query's exported fields without importing that package, since
// the overlay contract is meant to be implementable without depending on the core's query
// representation.
type Query struct {
	RequiredTerms   []string
	RequiredFilters map[string]string
	Language        string
	MaxResults      int
}

// SearchController streams results for one in-flight overlay search. Recv blocks until a
// result is available, the search is exhausted, or ctx is cancelled; the final return value
// reports whether a result was actually produced, in place of the reference contract's
// optional-returning recv.
type SearchController interface {
	Recv(ctx context.Context) (docresult.DocumentResult, docresult.ProviderID, bool)
}

// OverlayClient launches a query across the peer-to-peer overlay and returns a controller
// for streaming back its results.
type OverlayClient interface {
	Search(ctx context.Context, q Query) (SearchController, error)
}

// Extractor produces a DocumentReport and the set of ancestor edges discovered while
// crawling one content hash.
type Extractor interface {
	Extract(ctx context.Context, cid contenthash.Hash) (ExtractResult, error)
}

// AncestorEdge names one (child -> parent) link discovered during extraction.
type AncestorEdge struct {
	Child  contenthash.Hash
	Name   string
	Parent contenthash.Hash
}

// ExtractResult bundles an extractor's output for a single crawled content hash.
type ExtractResult struct {
	Report   DocumentReport
	Ancestry []AncestorEdge
}

// DocumentReport mirrors localindex.DocumentReport's shape so the Extractor contract can be
// declared here without importing internal/localindex.
type DocumentReport struct {
	Occurrences []TermOccurrence
	Filters     map[string]string

	Title       string
	Description string
	IconHash    contenthash.Hash
	Domain      string
}

// TermOccurrence tags one occurrence of a term with its structural category.
type TermOccurrence struct {
	Term     string
	Category docresult.Category
}
