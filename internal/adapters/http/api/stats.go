package api

import (
	"context"
	"net/http"
)

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats(r.Context()))
}

// tableStats is the default provider: the number of tables and rows served.
type tableStats struct {
	deps Dependencies
}

func (s tableStats) GetStats(ctx context.Context) map[string]any {
	tables := s.deps.Tables(ctx)
	rows := 0
	for _, t := range tables {
		rows += t.Rows
	}
	return map[string]any{
		"tables": len(tables),
		"rows":   rows,
	}
}
