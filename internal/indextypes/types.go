// Package indextypes holds the small value types shared between the localindex and query
// packages. It exists purely to break the import cycle that would otherwise appear between
// "LocalIndex builds a Query result" and "Query matches against LocalIndex's postings" —
// it has no dependencies of its own.
package indextypes

// LocalCid is a 32-bit monotonically assigned integer, unique within one process lifetime,
// used as a compact key in every per-document data structure. Allocation is append-only: a
// LocalCid is never reused.
type LocalCid uint32

// FilterKey is a categorical (key, value) attribute posting key, e.g. {"lang", "en"}.
type FilterKey struct {
	Key   string
	Value string
}
