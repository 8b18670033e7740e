package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/draughtworks/brewdeck/internal/event"
	"github.com/draughtworks/brewdeck/internal/server"
	"github.com/draughtworks/brewdeck/internal/services"
	"github.com/draughtworks/brewdeck/pkg/models"
)

// handleListOrders returns all orders as a bare array, newest first, optionally
// filtered by status. The endpoint is unpaged; consumers page client-side.
func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidOrderStatus(status) {
		server.BadRequest(w, "status must be one of PENDING, PAID, CANCELLED", r.URL.Path)
		return
	}

	orders, err := h.orders.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		server.InternalError(w, "failed to list orders", r.URL.Path)
		return
	}
	if orders == nil {
		orders = []models.BeerOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "order not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to get order", zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to get order", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd models.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := cmd.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	order, err := h.orders.Create(r.Context(), cmd)
	if err != nil {
		// An unknown beer on a line surfaces as not-found from the catalog.
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "order references an unknown beer", r.URL.Path)
			return
		}
		h.logger.Error("failed to create order", zap.Error(err))
		server.InternalError(w, "failed to create order", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicOrderChanged, "created", order.ID)
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}
	version, ok := requestVersion(r)
	if !ok {
		server.BadRequest(w, "version must be provided via If-Match header or version parameter", r.URL.Path)
		return
	}

	var cmd models.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := cmd.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	order, err := h.orders.Update(r.Context(), id, version, cmd)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			server.NotFound(w, "order not found", r.URL.Path)
		case errors.Is(err, services.ErrConflict):
			server.Conflict(w, "order was modified concurrently", r.URL.Path)
		default:
			h.logger.Error("failed to update order", zap.Int64("id", id), zap.Error(err))
			server.InternalError(w, "failed to update order", r.URL.Path)
		}
		return
	}

	h.publishChange(r, event.TopicOrderChanged, "updated", order.ID)
	writeJSON(w, http.StatusOK, order)
}

// orderStatusRequest is the payload for the status transition endpoint.
type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}
	version, ok := requestVersion(r)
	if !ok {
		server.BadRequest(w, "version must be provided via If-Match header or version parameter", r.URL.Path)
		return
	}

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		server.ValidationFailed(w, r.URL.Path, map[string]string{
			"status": "must be one of PENDING, PAID, CANCELLED",
		})
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, version, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			server.NotFound(w, "order not found", r.URL.Path)
		case errors.Is(err, services.ErrConflict):
			server.Conflict(w, "order was modified concurrently", r.URL.Path)
		default:
			h.logger.Error("failed to update order status", zap.Int64("id", id), zap.Error(err))
			server.InternalError(w, "failed to update order status", r.URL.Path)
		}
		return
	}

	h.publishChange(r, event.TopicOrderChanged, "status-changed", order.ID)
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "order not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to delete order", zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete order", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicOrderChanged, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
