// Package filter implements the fixed-width membership sketch peers advertise to one
// another so that a query can be routed toward nodes likely to hold matching documents.
package filter

import (
	"hash/fnv"
	"sync"
)

// Size is the default bit-width of a Filter, chosen so that a filter advertising roughly
// 15,000 terms keeps a false-positive rate under 1% at K hash rounds.
const Size = 125_000

// K is the number of independent hash positions set per inserted term. Both Size and K
// are part of the on-wire semantics advertised to peers; changing either is a protocol
// break.
const K = 8

// Filter is a fixed-length bit array supporting insertion of hashed terms and bitwise
// union. It is the basis of peer routing: a node only forwards a query to a peer whose
// advertised Filter reports a non-zero MatchScore for the query's required terms.
type Filter struct {
	mu   sync.RWMutex
	bits []uint64
}

func wordsFor(size int) int {
	return (size + 63) / 64
}

// New returns an empty Filter with all bits zero.
func New() *Filter {
	return &Filter{bits: make([]uint64, wordsFor(Size))}
}

// Add hashes term with K independent positions in [0,Size) and sets those bits. Add is
// idempotent: adding the same term twice leaves the filter unchanged after the first call.
func (f *Filter) Add(term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(term)
}

func (f *Filter) setLocked(term string) {
	h1, h2 := termHashes(term)
	for i := uint64(0); i < K; i++ {
		pos := (h1 + i*h2) % Size
		f.bits[pos/64] |= 1 << (pos % 64)
	}
}

// UnionInto ORs every bit of other into f, so that a query matching other's terms also
// matches f afterward. Filter union is commutative and associative.
func (f *Filter) UnionInto(other *Filter) {
	if other == nil {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bits {
		f.bits[i] |= other.bits[i]
	}
}

// ContainsAll reports whether every term in terms has all K of its positions set.
func (f *Filter) ContainsAll(terms []string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range terms {
		if !f.containsLocked(t) {
			return false
		}
	}
	return true
}

func (f *Filter) containsLocked(term string) bool {
	h1, h2 := termHashes(term)
	for i := uint64(0); i < K; i++ {
		pos := (h1 + i*h2) % Size
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// MatchScore returns the count of terms in terms for which ContainsAll([]string{t}) holds.
func (f *Filter) MatchScore(terms []string) uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var score uint32
	for _, t := range terms {
		if f.containsLocked(t) {
			score++
		}
	}
	return score
}

// Clone returns an independent copy of f, suitable for publishing by pointer-swap while
// mutation continues on the original (§5: "the advertised filter may be read concurrently
// and is published by pointer-swap or equivalent snapshot discipline").
func (f *Filter) Clone() *Filter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	bits := make([]uint64, len(f.bits))
	copy(bits, f.bits)
	return &Filter{bits: bits}
}

// EstimateFalsePositiveRate returns the expected false-positive rate of this filter after
// n terms have been inserted, following (1 - e^(-K*n/Size))^K.
func EstimateFalsePositiveRate(n int) float64 {
	if n <= 0 {
		return 0
	}
	return falsePositiveRate(float64(n), Size, K)
}

// termHashes derives two independent 64-bit hashes for term. h1 is FNV-1a over the term
// bytes; h2 re-mixes h1 through a golden-ratio/murmur3-style finalizer rather than invoking
// a second hash family, so that a single hash pass produces both inputs to the spec's
// h1 + i*h2 mod N probe sequence.
func termHashes(term string) (h1, h2 uint64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(term))
	h1 = hasher.Sum64()
	h2 = mix(h1)
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

// mix applies the same golden-ratio/murmur3-style avalanche used by the teacher's
// BloomFilter.hash to turn one 64-bit value into a second, independent-looking one.
func mix(h uint64) uint64 {
	h ^= 0x9e3779b97f4a7c15
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
