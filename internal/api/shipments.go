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

// handleListShipments returns an order's shipments as a bare array. An
// unknown order yields 404 rather than an empty list.
func (h *Handler) handleListShipments(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}

	shipments, err := h.shipments.List(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "order not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to list shipments", zap.Int64("orderID", orderID), zap.Error(err))
		server.InternalError(w, "failed to list shipments", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, shipments)
}

func (h *Handler) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "shipment id must be a positive integer", r.URL.Path)
		return
	}

	shipment, err := h.shipments.Get(r.Context(), orderID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "shipment not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to get shipment",
			zap.Int64("orderID", orderID), zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to get shipment", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, shipment)
}

func (h *Handler) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}

	var req models.ShipmentCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	shipment, err := h.shipments.Create(r.Context(), orderID, req)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "order not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to create shipment", zap.Int64("orderID", orderID), zap.Error(err))
		server.InternalError(w, "failed to create shipment", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicShipmentChanged, "created", shipment.ID)
	writeJSON(w, http.StatusCreated, shipment)
}

// handleUpdateShipment patches a shipment. Only the fields present in the
// request body change; absent fields keep their stored values.
func (h *Handler) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "shipment id must be a positive integer", r.URL.Path)
		return
	}
	version, ok := requestVersion(r)
	if !ok {
		server.BadRequest(w, "version must be provided via If-Match header or version parameter", r.URL.Path)
		return
	}

	var req models.ShipmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	shipment, err := h.shipments.Update(r.Context(), orderID, id, version, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			server.NotFound(w, "shipment not found", r.URL.Path)
		case errors.Is(err, services.ErrConflict):
			server.Conflict(w, "shipment was modified concurrently", r.URL.Path)
		default:
			h.logger.Error("failed to update shipment",
				zap.Int64("orderID", orderID), zap.Int64("id", id), zap.Error(err))
			server.InternalError(w, "failed to update shipment", r.URL.Path)
		}
		return
	}

	h.publishChange(r, event.TopicShipmentChanged, "updated", shipment.ID)
	writeJSON(w, http.StatusOK, shipment)
}

func (h *Handler) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		server.BadRequest(w, "order id must be a positive integer", r.URL.Path)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "shipment id must be a positive integer", r.URL.Path)
		return
	}

	if err := h.shipments.Delete(r.Context(), orderID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "shipment not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to delete shipment",
			zap.Int64("orderID", orderID), zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete shipment", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicShipmentChanged, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
