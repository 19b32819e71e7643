// Package ranker incrementally maintains a ranking over (provider, DocumentResult) pairs
// streamed in out of order and possibly duplicated across providers, combining
// term-frequency, length, language, and popularity signals into a single ordering.
package ranker

import (
	"sort"

	"github.com/lattice-mesh/searchd/internal/contenthash"
	"github.com/lattice-mesh/searchd/internal/docresult"
)

// targetWordCount is the length signal's sweet spot: documents near this many total words
// score highest on length_score.
const targetWordCount = 800

type tfEntry struct {
	cid   contenthash.Hash
	score float64
}

// Ranker accumulates results for a single client's query. It is not safe for concurrent
// use by multiple clients; callers hold one Ranker per in-flight client request.
type Ranker struct {
	results   map[contenthash.Hash]docresult.DocumentResult
	providers map[contenthash.Hash]map[docresult.ProviderID]struct{}
	tfRanking []tfEntry // ascending by score

	language string
}

// New returns an empty Ranker. language is the query's preferred language, used by
// lang_score.
func New(language string) *Ranker {
	return &Ranker{
		results:   make(map[contenthash.Hash]docresult.DocumentResult),
		providers: make(map[contenthash.Hash]map[docresult.ProviderID]struct{}),
		language:  language,
	}
}

// Insert records a streamed result from provider. Re-inserting the same (cid, provider)
// pair is a no-op beyond overwriting the stored DocumentResult (last write wins); the
// tf_ranking entry and popularity count are only touched the first time a given cid or
// (cid, provider) pair is seen, which is what keeps the operation idempotent per §8
// invariant 5.
func (r *Ranker) Insert(doc docresult.DocumentResult, provider docresult.ProviderID) {
	_, seenCid := r.results[doc.Cid]
	r.results[doc.Cid] = doc

	if !seenCid {
		r.insertTFRanking(doc.Cid, tf(doc))
	}

	providers, ok := r.providers[doc.Cid]
	if !ok {
		providers = make(map[docresult.ProviderID]struct{})
		r.providers[doc.Cid] = providers
	}
	providers[provider] = struct{}{}
}

func tf(doc docresult.DocumentResult) float64 {
	return doc.TermFrequency()
}

// insertTFRanking bisect-inserts (cid, score) into the ascending tf_ranking sequence.
func (r *Ranker) insertTFRanking(cid contenthash.Hash, score float64) {
	i := sort.Search(len(r.tfRanking), func(i int) bool {
		return r.tfRanking[i].score >= score
	})
	r.tfRanking = append(r.tfRanking, tfEntry{})
	copy(r.tfRanking[i+1:], r.tfRanking[i:])
	r.tfRanking[i] = tfEntry{cid: cid, score: score}
}

// Scores holds the per-signal scores computed for one result, alongside the combined final
// score used for ordering.
type Scores struct {
	TF         float64
	Length     float64
	Language   float64
	Popularity float64
	Final      float64
}

// Ranked is one entry of Ranker's final ordering.
type Ranked struct {
	Result docresult.DocumentResult
	Scores Scores
}

// Rank returns every accumulated result in descending final-score order, ties broken by
// ContentHash lexicographic order for determinism.
func (r *Ranker) Rank() []Ranked {
	n := len(r.results)
	if n == 0 {
		return nil
	}

	tfRank := make(map[contenthash.Hash]int, n)
	for i, e := range r.tfRanking {
		tfRank[e.cid] = i
	}

	type lenEntry struct {
		cid      contenthash.Hash
		distance int
	}
	lenEntries := make([]lenEntry, 0, n)
	for cid, doc := range r.results {
		d := doc.WordCount.Sum() - targetWordCount
		if d < 0 {
			d = -d
		}
		lenEntries = append(lenEntries, lenEntry{cid: cid, distance: d})
	}
	sort.Slice(lenEntries, func(i, j int) bool {
		if lenEntries[i].distance != lenEntries[j].distance {
			return lenEntries[i].distance > lenEntries[j].distance
		}
		return lenEntries[i].cid < lenEntries[j].cid
	})
	lengthRank := make(map[contenthash.Hash]int, n)
	for i, e := range lenEntries {
		lengthRank[e.cid] = i
	}

	type popEntry struct {
		cid   contenthash.Hash
		count int
	}
	popEntries := make([]popEntry, 0, n)
	for cid := range r.results {
		popEntries = append(popEntries, popEntry{cid: cid, count: len(r.providers[cid])})
	}
	sort.Slice(popEntries, func(i, j int) bool {
		if popEntries[i].count != popEntries[j].count {
			return popEntries[i].count < popEntries[j].count
		}
		return popEntries[i].cid < popEntries[j].cid
	})
	popularityRank := make(map[contenthash.Hash]int, n)
	for i, e := range popEntries {
		popularityRank[e.cid] = i
	}

	divisor := float64(n)
	if n == 1 {
		divisor = 1 // n is already 1 here; every signal rank of a single result is 0/1 = 0
	}

	out := make([]Ranked, 0, n)
	for cid, doc := range r.results {
		scores := Scores{
			TF:         float64(tfRank[cid]) / divisor,
			Length:     float64(lengthRank[cid]) / divisor,
			Language:   langScore(r.language, doc.Language),
			Popularity: float64(popularityRank[cid]) / divisor,
		}
		scores.Final = (scores.TF + scores.Length + scores.Language + scores.Popularity) / 4
		out = append(out, Ranked{Result: doc, Scores: scores})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Scores.Final != out[j].Scores.Final {
			return out[i].Scores.Final > out[j].Scores.Final
		}
		return out[i].Result.Cid < out[j].Result.Cid
	})

	return out
}

// langScore implements §4.D's lang_score table: 1.0 on an exact match, 0.5 when the
// document carries no language metadata (unknown, neither confirmed nor hostile), and 0.0
// when the document is tagged with a different language than the query prefers.
func langScore(preferred, docLang string) float64 {
	if preferred == "" || docLang == "" {
		return 0.5
	}
	if preferred == docLang {
		return 1.0
	}
	return 0.0
}

// Summary reports the number of distinct results and the number of distinct providers seen
// across all of them, for metrics.
func (r *Ranker) Summary() (results, providers int) {
	providerSet := make(map[docresult.ProviderID]struct{})
	for _, ps := range r.providers {
		for p := range ps {
			providerSet[p] = struct{}{}
		}
	}
	return len(r.results), len(providerSet)
}
