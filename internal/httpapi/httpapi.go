// Package httpapi exposes the daemon's HTTP surface: local-only search, overlay-backed
// search launch, incremental result draining, and a health check.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lattice-mesh/searchd/internal/localindex"
	"github.com/lattice-mesh/searchd/internal/metrics"
	"github.com/lattice-mesh/searchd/internal/overlay"
	"github.com/lattice-mesh/searchd/internal/query"
	"github.com/lattice-mesh/searchd/internal/ranker"
	"github.com/lattice-mesh/searchd/internal/searchpark"
)

// Server wires the core components into a net/http.Handler.
type Server struct {
	idx     *localindex.LocalIndex
	park    *searchpark.Park
	overlay overlay.OverlayClient
	metrics *metrics.Metrics
	log     *slog.Logger

	defaultLanguage string

	mu        sync.Mutex
	idQueries map[searchpark.ID]string
}

// NewServer constructs a Server. overlayClient may be nil, in which case /search always
// responds 503; this lets the local-search-only deployment mode (no overlay wired yet) run
// without a collaborator.
func NewServer(idx *localindex.LocalIndex, park *searchpark.Park, overlayClient overlay.OverlayClient, m *metrics.Metrics, log *slog.Logger, defaultLanguage string) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		idx:             idx,
		park:            park,
		overlay:         overlayClient,
		metrics:         m,
		log:             log,
		defaultLanguage: defaultLanguage,
		idQueries:       make(map[searchpark.ID]string),
	}
}

// Routes returns the daemon's HTTP mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/local-search", s.handleLocalSearch)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/fetch-results", s.handleFetchResults)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func parseTerms(q string) []string {
	fields := strings.Fields(q)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// handleLocalSearch answers GET /local-search?q=... by evaluating the query against the
// local index only and returning a ranked result list.
func (s *Server) handleLocalSearch(w http.ResponseWriter, r *http.Request) {
	s.countRequest("local-search")
	q := r.URL.Query().Get("q")

	start := time.Now()
	pq := &query.Query{RequiredTerms: parseTerms(q), Language: s.defaultLanguage}
	rk := ranker.New(pq.Language)
	for result := range s.idx.Search(pq) {
		rk.Insert(result, "local")
	}
	if s.metrics != nil {
		s.metrics.LocalSearchDuration.Observe(time.Since(start).Seconds())
	}

	writeJSON(w, http.StatusOK, rk.Rank())
}

// handleSearch answers GET /search?q=... by launching an overlay-backed search and
// returning its id for later polling.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.countRequest("search")
	q := r.URL.Query().Get("q")

	if s.overlay == nil {
		s.countError("search", "unavailable")
		http.Error(w, "overlay not configured", http.StatusServiceUnavailable)
		return
	}

	ctrl, err := s.overlay.Search(r.Context(), overlay.Query{
		RequiredTerms: parseTerms(q),
		Language:      s.defaultLanguage,
	})
	if err != nil {
		s.countError("search", "transient")
		s.log.Warn("overlay search launch failed", slog.String("error", err.Error()))
		http.Error(w, "search launch failed", http.StatusBadGateway)
		return
	}

	id := s.park.Insert(context.Background(), ctrl)

	s.mu.Lock()
	s.idQueries[id] = q
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    strconv.FormatUint(uint64(id), 10),
		"query": q,
	})
}

// handleFetchResults answers GET /fetch-results?id=... by draining the park entry for id
// and echoing back the original query string. Unknown or expired ids yield 404.
func (s *Server) handleFetchResults(w http.ResponseWriter, r *http.Request) {
	s.countRequest("fetch-results")
	raw := r.URL.Query().Get("id")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.countError("fetch-results", "malformed")
		http.Error(w, "malformed id", http.StatusBadRequest)
		return
	}
	id := searchpark.ID(n)

	results, ok := s.park.FetchResults(id)
	if !ok {
		s.countError("fetch-results", "not_found")
		http.Error(w, "unknown or expired search id", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	originalQuery := s.idQueries[id]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   originalQuery,
		"results": results,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.idx.DocumentCount(),
	})
}

func (s *Server) countRequest(route string) {
	if s.metrics != nil {
		s.metrics.HTTPRequestsTotal.WithLabelValues(route).Inc()
	}
}

func (s *Server) countError(route, kind string) {
	if s.metrics != nil {
		s.metrics.HTTPErrorsTotal.WithLabelValues(route, kind).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
