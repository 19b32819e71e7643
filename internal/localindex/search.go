package localindex

import (
	"github.com/lattice-mesh/searchd/internal/docresult"
	"github.com/lattice-mesh/searchd/internal/indextypes"
	"github.com/lattice-mesh/searchd/internal/query"
)

// searchBufSize bounds how many results Search will buffer ahead of a slow consumer before
// the producer goroutine blocks on send.
const searchBufSize = 16

// Search evaluates q against the index and returns a lazily-populated channel of matching
// documents, ranked by nothing in particular — ordering is the caller's (Ranker's) job. The
// channel is closed once every match has been sent or q.MaxResults has been reached.
func (idx *LocalIndex) Search(q *query.Query) <-chan docresult.DocumentResult {
	out := make(chan docresult.DocumentResult, searchBufSize)

	go func() {
		defer close(out)

		idx.mu.RLock()
		matches := q.MatchingDocs(idx.terms, idx.filters)
		type hit struct {
			lcid indextypes.LocalCid
			rec  *docRecord
		}
		hits := make([]hit, 0, len(matches))
		for _, lcid := range matches {
			if rec, ok := idx.docs[lcid]; ok {
				hits = append(hits, hit{lcid, rec})
			}
		}
		paths := make(map[indextypes.LocalCid][][]string, len(hits))
		for _, h := range hits {
			paths[h.lcid] = idx.buildPathsLocked(h.lcid)
		}
		idx.mu.RUnlock()

		sent := 0
		for _, h := range hits {
			if q.MaxResults > 0 && sent >= q.MaxResults {
				return
			}

			termCounts := make([]docresult.WordCount, len(q.RequiredTerms))
			for i, term := range q.RequiredTerms {
				termCounts[i] = h.rec.termCounts[term]
			}

			result := docresult.DocumentResult{
				Cid:         h.rec.hash,
				Paths:       paths[h.lcid],
				IconHash:    h.rec.iconHash,
				Domain:      h.rec.domain,
				Title:       h.rec.title,
				Description: h.rec.description,
				Language:    h.rec.language,
				TermCounts:  termCounts,
				WordCount:   h.rec.wordCount,
			}

			out <- result
			sent++
		}
	}()

	return out
}
