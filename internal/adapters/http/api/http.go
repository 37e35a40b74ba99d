// Package api serves finished rating tables over HTTP as JSON.
package api

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/metrics"
)

const (
	defaultLimit    = 50
	defaultMaxLimit = 500
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Tables(ctx context.Context) []types.TableInfo
	Top(ctx context.Context, name string, q repository.Query) ([]types.Entry, error)
	Rank(ctx context.Context, name, label string) (types.Entry, error)
}

// Entry mirrors the read shape returned by table queries.
type Entry = types.Entry

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps the limit query parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMetrics serves and records metrics on m instead of the default manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStats sets what GET /stats reports.
func WithStats(p StatsProvider) Option {
	return func(s *Server) {
		if p != nil {
			s.stats = p
		}
	}
}

// Server wires HTTP routes for the rating API.
type Server struct {
	deps     Dependencies
	stats    StatsProvider
	maxLimit int
	metrics  *metrics.Manager
}

// NewServer creates an API server over deps.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		maxLimit: defaultMaxLimit,
		metrics:  metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stats == nil {
		s.stats = tableStats{deps: deps}
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	health := NewHealthHandler(s.metrics.Registry())
	stats := NewStatsHandler(s.stats)
	tables := NewTablesHandler(s.deps, s.maxLimit)

	mux.HandleFunc("GET /healthz", s.instrument(health.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", s.instrument(stats.HandleStats, "stats"))
	mux.HandleFunc("GET /tables", s.instrument(tables.HandleList, "tables"))
	mux.HandleFunc("GET /tables/{name}", s.instrument(tables.HandleTop, "table"))
	mux.HandleFunc("GET /tables/{name}/rank/{label}", s.instrument(tables.HandleRank, "rank"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError maps store errors to status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "table_not_found", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
