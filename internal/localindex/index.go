package localindex

import (
	"log/slog"
	"sync"

	"github.com/lattice-mesh/searchd/internal/contenthash"
	"github.com/lattice-mesh/searchd/internal/docresult"
	"github.com/lattice-mesh/searchd/internal/filter"
	"github.com/lattice-mesh/searchd/internal/indextypes"
)

// docRecord holds the aux data a document carries beyond what lives in the postings maps:
// enough to build a docresult.DocumentResult without any further I/O against the storage
// client, since the crawler already handed us this metadata in the DocumentReport.
type docRecord struct {
	hash        contenthash.Hash
	wordCount   docresult.WordCount
	termCounts  map[string]docresult.WordCount
	title       string
	description string
	domain      string
	iconHash    contenthash.Hash
	language    string
}

// LocalIndex is the authoritative in-process store of crawled documents for one node. All
// mutating operations are serialized by a single reader/writer lock; the advertised Filter
// is read concurrently by peers deciding whether to forward a query here.
type LocalIndex struct {
	mu sync.RWMutex

	cidCounter uint32
	cidToLcid  map[contenthash.Hash]indextypes.LocalCid
	lcidToCid  map[indextypes.LocalCid]contenthash.Hash
	folders    map[indextypes.LocalCid]struct{}

	terms   map[string]map[indextypes.LocalCid]float32
	filters map[indextypes.FilterKey][]indextypes.LocalCid

	ancestors map[indextypes.LocalCid]map[indextypes.LocalCid]string

	docs map[indextypes.LocalCid]*docRecord

	filt        *filter.Filter
	filterDirty bool

	log *slog.Logger
}

// New returns an empty LocalIndex. If log is nil, slog.Default() is used.
func New(log *slog.Logger) *LocalIndex {
	if log == nil {
		log = slog.Default()
	}
	return &LocalIndex{
		cidToLcid: make(map[contenthash.Hash]indextypes.LocalCid),
		lcidToCid: make(map[indextypes.LocalCid]contenthash.Hash),
		folders:   make(map[indextypes.LocalCid]struct{}),
		terms:     make(map[string]map[indextypes.LocalCid]float32),
		filters:   make(map[indextypes.FilterKey][]indextypes.LocalCid),
		ancestors: make(map[indextypes.LocalCid]map[indextypes.LocalCid]string),
		docs:      make(map[indextypes.LocalCid]*docRecord),
		filt:      filter.New(),
		log:       log,
	}
}

// nextLcidLocked allocates the next LocalCid. Callers must hold mu for writing.
func (idx *LocalIndex) nextLcidLocked() indextypes.LocalCid {
	lcid := indextypes.LocalCid(idx.cidCounter)
	idx.cidCounter++
	return lcid
}

// ensureLcidLocked returns the LocalCid for hash, allocating one if this is the first time
// hash has been seen. Callers must hold mu for writing.
func (idx *LocalIndex) ensureLcidLocked(hash contenthash.Hash) (lcid indextypes.LocalCid, isNew bool) {
	if lcid, ok := idx.cidToLcid[hash]; ok {
		return lcid, false
	}
	lcid = idx.nextLcidLocked()
	idx.cidToLcid[hash] = lcid
	idx.lcidToCid[lcid] = hash
	return lcid, true
}

// AddDocument indexes a crawled document. It fails silently with a logged warning if hash
// is already indexed.
func (idx *LocalIndex) AddDocument(hash contenthash.Hash, report DocumentReport) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if lcid, ok := idx.cidToLcid[hash]; ok {
		if _, indexed := idx.docs[lcid]; indexed {
			idx.log.Warn("tried to add already indexed document", slog.String("cid", string(hash)))
			return
		}
	}

	lcid, _ := idx.ensureLcidLocked(hash)
	// An ancestor edge may have pre-registered this cid as a folder before the crawler
	// got around to calling AddDocument for it; undo that now that we know it's a document.
	delete(idx.folders, lcid)

	rec := &docRecord{
		hash:        hash,
		termCounts:  make(map[string]docresult.WordCount),
		title:       report.Title,
		description: report.Description,
		domain:      report.Domain,
		iconHash:    report.IconHash,
		language:    report.Filters["lang"],
	}
	for _, occ := range report.Occurrences {
		rec.wordCount.Add(occ.Category)
		tc := rec.termCounts[occ.Term]
		tc.Add(occ.Category)
		rec.termCounts[occ.Term] = tc
	}
	idx.docs[lcid] = rec

	total := rec.wordCount.Sum()
	for term, tc := range rec.termCounts {
		if total > 0 {
			postings, ok := idx.terms[term]
			if !ok {
				postings = make(map[indextypes.LocalCid]float32)
				idx.terms[term] = postings
			}
			postings[lcid] = float32(tc.Sum()) / float32(total)
		}
		idx.filt.Add(term)
	}

	for key, value := range report.Filters {
		fk := indextypes.FilterKey{Key: key, Value: value}
		idx.filters[fk] = append(idx.filters[fk], lcid)
		idx.filt.Add(key + "=" + value)
	}
}

// AddAncestor records that child is listed under name within parent. It idempotently
// allocates LocalCids for either side that hasn't been seen before, marks parent as a
// folder, and marks child as a folder only when child is being seen for the very first
// time through this call — the crawler calls AddAncestor before AddDocument for true
// documents, so AddDocument above is what un-marks the child once its own report arrives.
func (idx *LocalIndex) AddAncestor(child contenthash.Hash, name string, parent contenthash.Hash) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	childLcid, childIsNew := idx.ensureLcidLocked(child)
	if childIsNew {
		idx.folders[childLcid] = struct{}{}
	}

	parentLcid, _ := idx.ensureLcidLocked(parent)
	idx.folders[parentLcid] = struct{}{}

	if idx.ancestors[childLcid] == nil {
		idx.ancestors[childLcid] = make(map[indextypes.LocalCid]string)
	}
	idx.ancestors[childLcid][parentLcid] = name
}

// Documents returns the set of ContentHash known to be documents (not folders).
func (idx *LocalIndex) Documents() map[contenthash.Hash]struct{} {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[contenthash.Hash]struct{}, len(idx.cidToLcid)-len(idx.folders))
	for hash, lcid := range idx.cidToLcid {
		if _, isFolder := idx.folders[lcid]; !isFolder {
			out[hash] = struct{}{}
		}
	}
	return out
}

// Folders returns, for each LocalCid with at least one recorded ancestor, a count keyed by
// that first-listed parent's ContentHash. Map iteration order in Go is randomized, so when
// a child has more than one parent the parent that is "first" varies between calls — this
// mirrors the ambiguity already present in the reference implementation (see DESIGN.md).
func (idx *LocalIndex) Folders() map[contenthash.Hash]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[contenthash.Hash]int)
	for lcid := range idx.cidToLcid {
		parents, ok := idx.ancestors[lcid]
		if !ok || len(parents) == 0 {
			continue
		}
		for parentLcid := range parents {
			if parentCid, ok := idx.lcidToCid[parentLcid]; ok {
				out[parentCid]++
			}
			break
		}
	}
	return out
}

// DocumentCount returns the number of known content hashes that are not folders.
func (idx *LocalIndex) DocumentCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.cidToLcid) - len(idx.folders)
}

// UpdateFilter rebuilds the advertised filter from the current term keyset if it has been
// marked dirty, and marks it clean again. AddDocument always keeps the filter current
// incrementally, so UpdateFilter is a no-op unless MarkFilterDirty was called; the dirty
// flag does not stop AddDocument's incremental updates. Both paths yield identical filters
// for the same insertion multiset.
func (idx *LocalIndex) UpdateFilter() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.filterDirty {
		return
	}
	idx.rebuildFilterLocked()
}

func (idx *LocalIndex) rebuildFilterLocked() {
	fresh := filter.New()
	for term := range idx.terms {
		fresh.Add(term)
	}
	for fk := range idx.filters {
		fresh.Add(fk.Key + "=" + fk.Value)
	}
	idx.filt = fresh
	idx.filterDirty = false
}

// MarkFilterDirty makes the next UpdateFilter call rebuild the filter from scratch. It does
// not turn off the incremental Add that AddDocument performs for every term.
func (idx *LocalIndex) MarkFilterDirty() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.filterDirty = true
}

// Filter returns a snapshot of the currently advertised membership sketch, safe to read
// concurrently with further mutation of the index.
func (idx *LocalIndex) Filter() *filter.Filter {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.filt.Clone()
}
