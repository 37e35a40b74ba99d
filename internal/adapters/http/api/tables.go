package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/courtside/internal/adapters/repository"
)

// TablesHandler serves rating tables.
type TablesHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewTablesHandler creates a tables handler.
func NewTablesHandler(deps Dependencies, maxLimit int) *TablesHandler {
	return &TablesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /tables.
func (h *TablesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Tables(r.Context()))
}

// HandleTop handles GET /tables/{name}?limit=N&min_appearances=M.
func (h *TablesHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		code := "bad_request"
		if errors.Is(err, ErrLimitExceeded) {
			code = "limit_exceeded"
		}
		writeError(w, http.StatusBadRequest, code, err)
		return
	}
	entries, err := h.deps.Top(r.Context(), r.PathValue("name"), q)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *TablesHandler) parseQuery(r *http.Request) (repository.Query, error) {
	q := repository.Query{Limit: min(defaultLimit, h.maxLimit)}
	values := r.URL.Query()
	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest)
		}
		if n > h.maxLimit {
			return q, ErrLimitExceeded
		}
		q.Limit = n
	}
	if s := values.Get("min_appearances"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: min_appearances must be a non-negative integer", ErrBadRequest)
		}
		q.MinAppearances = n
	}
	return q, nil
}

// HandleRank handles GET /tables/{name}/rank/{label}.
func (h *TablesHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.Rank(r.Context(), r.PathValue("name"), r.PathValue("label"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
