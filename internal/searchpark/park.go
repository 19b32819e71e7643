// Package searchpark reconciles a push-based producer — an overlay search streaming
// partial results over time — with a pull-based consumer — an HTTP client periodically
// draining them — without coupling the two lifetimes.
package searchpark

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lattice-mesh/searchd/internal/docresult"
	"github.com/lattice-mesh/searchd/internal/overlay"
)

// ID identifies one ongoing search. It has no cryptographic property; collisions are
// treated as a programmer error.
type ID uint64

// ResultPair is one streamed (result, provider) pair in producer-arrival order.
type ResultPair struct {
	Result   docresult.DocumentResult
	Provider docresult.ProviderID
}

// ongoingSearch holds the buffered results accumulated for one search and the last time a
// consumer drained it. It is mutated only while the park's write lock is held.
type ongoingSearch struct {
	buffer    []ResultPair
	lastFetch time.Time
}

const expiry = 60 * time.Second

// Park is the registry of ongoing searches, keyed by a random 64-bit ID. A single
// reader-writer lock protects the map; individual entries are mutated only under the write
// lock, matching the single-shared-mutable-state discipline the core relies on.
type Park struct {
	mu      sync.RWMutex
	entries map[ID]*ongoingSearch

	log *slog.Logger
}

// New returns an empty Park. If log is nil, slog.Default() is used.
func New(log *slog.Logger) *Park {
	if log == nil {
		log = slog.Default()
	}
	return &Park{entries: make(map[ID]*ongoingSearch), log: log}
}

// Insert registers a new search backed by ctrl, spawns the background task that drains
// ctrl into the park, and returns the search's ID. Cancelling ctx stops the producer task
// early.
func (p *Park) Insert(ctx context.Context, ctrl overlay.SearchController) ID {
	id := p.allocateID()

	p.mu.Lock()
	p.entries[id] = &ongoingSearch{lastFetch: time.Now()}
	p.mu.Unlock()

	go p.run(ctx, id, ctrl)

	return id
}

func (p *Park) allocateID() ID {
	for {
		id := ID(rand.Uint64())
		p.mu.RLock()
		_, exists := p.entries[id]
		p.mu.RUnlock()
		if !exists {
			return id
		}
		p.log.Warn("search id collision, retrying", slog.Uint64("id", uint64(id)))
	}
}

// run owns ctrl for the lifetime of one search: it receives streamed results and appends
// them to the park entry until the controller is exhausted, the context is cancelled, or
// the consumer-inactivity window elapses.
func (p *Park) run(ctx context.Context, id ID, ctrl overlay.SearchController) {
	for {
		result, provider, ok := ctrl.Recv(ctx)
		if !ok {
			return
		}

		p.mu.Lock()
		entry, exists := p.entries[id]
		if !exists {
			p.mu.Unlock()
			return
		}

		entry.buffer = append(entry.buffer, ResultPair{Result: result, Provider: provider})

		if time.Since(entry.lastFetch) > expiry {
			delete(p.entries, id)
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
	}
}

// FetchResults atomically drains the buffered results for id and resets its inactivity
// clock. The second return value is false when id is unknown (expired or never existed).
func (p *Park) FetchResults(id ID) ([]ResultPair, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[id]
	if !ok {
		return nil, false
	}

	entry.lastFetch = time.Now()
	drained := entry.buffer
	entry.buffer = nil
	return drained, true
}

// RunSweeper periodically removes entries whose inactivity window has elapsed even when no
// producer event is pending to notice it — an addition beyond the park's base contract
// (which expires entries only on producer-side events) for long-idle producers that would
// otherwise leak their entry forever. It blocks until ctx is cancelled.
func (p *Park) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Park) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, entry := range p.entries {
		if time.Since(entry.lastFetch) > expiry {
			delete(p.entries, id)
		}
	}
}

// Len reports the number of currently tracked searches, for metrics.
func (p *Park) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
