package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/draughtworks/brewdeck/internal/event"
	"github.com/draughtworks/brewdeck/internal/server"
	"github.com/draughtworks/brewdeck/internal/services"
	"github.com/draughtworks/brewdeck/pkg/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// handleListBeers returns a page of beers. The page query parameter is
// zero-based on the wire; size is clamped to [1, 100]. Filtering is by
// beerName substring and exact beerStyle; sort is a single "key,dir" token.
func (h *Handler) handleListBeers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 0
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			server.BadRequest(w, "page must be a non-negative integer", r.URL.Path)
			return
		}
		page = n
	}
	size := defaultPageSize
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			server.BadRequest(w, "size must be a positive integer", r.URL.Path)
			return
		}
		size = n
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	sortKey, sortDir := parseSort(q.Get("sort"))

	filter := services.BeerFilter{
		BeerName:  q.Get("beerName"),
		BeerStyle: q.Get("beerStyle"),
	}
	opts := services.ListOptions{
		Limit:     size,
		Offset:    page * size,
		SortBy:    sortKey,
		SortOrder: sortDir,
	}

	result, err := h.beers.List(r.Context(), filter, opts)
	if err != nil {
		h.logger.Error("failed to list beers", zap.Error(err))
		server.InternalError(w, "failed to list beers", r.URL.Path)
		return
	}

	content := result.Items
	if content == nil {
		content = []models.Beer{}
	}
	writeJSON(w, http.StatusOK, models.Page[models.Beer]{
		Content:       content,
		TotalElements: result.Total,
		TotalPages:    models.TotalPagesFor(result.Total, size),
		Size:          size,
		Number:        page,
	})
}

func (h *Handler) handleGetBeer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "beer id must be a positive integer", r.URL.Path)
		return
	}

	beer, err := h.beers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "beer not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to get beer", zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to get beer", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, beer)
}

func (h *Handler) handleCreateBeer(w http.ResponseWriter, r *http.Request) {
	var req models.BeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	beer, err := h.beers.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create beer", zap.Error(err))
		server.InternalError(w, "failed to create beer", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicBeerChanged, "created", beer.ID)
	writeJSON(w, http.StatusCreated, beer)
}

// handleUpdateBeer replaces a beer. The request must carry the version the
// caller last observed (If-Match header or version query parameter); a stale
// version yields 409.
func (h *Handler) handleUpdateBeer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "beer id must be a positive integer", r.URL.Path)
		return
	}
	version, ok := requestVersion(r)
	if !ok {
		server.BadRequest(w, "version must be provided via If-Match header or version parameter", r.URL.Path)
		return
	}

	var req models.BeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	beer, err := h.beers.Update(r.Context(), id, version, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			server.NotFound(w, "beer not found", r.URL.Path)
		case errors.Is(err, services.ErrConflict):
			server.Conflict(w, "beer was modified concurrently", r.URL.Path)
		default:
			h.logger.Error("failed to update beer", zap.Int64("id", id), zap.Error(err))
			server.InternalError(w, "failed to update beer", r.URL.Path)
		}
		return
	}

	h.publishChange(r, event.TopicBeerChanged, "updated", beer.ID)
	writeJSON(w, http.StatusOK, beer)
}

func (h *Handler) handleDeleteBeer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "beer id must be a positive integer", r.URL.Path)
		return
	}

	if err := h.beers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "beer not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to delete beer", zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete beer", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicBeerChanged, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// requestVersion extracts the optimistic-locking version the caller last
// observed, from If-Match or the version query parameter.
func requestVersion(r *http.Request) (int, bool) {
	raw := r.Header.Get("If-Match")
	if raw == "" {
		raw = r.URL.Query().Get("version")
	}
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
