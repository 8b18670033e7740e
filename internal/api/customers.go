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

// handleListCustomers returns the full customer collection as a bare array.
// The endpoint is deliberately unpaged; consumers sort and page client-side.
func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.logger.Error("failed to list customers", zap.Error(err))
		server.InternalError(w, "failed to list customers", r.URL.Path)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "customer id must be a positive integer", r.URL.Path)
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "customer not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to get customer", zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to get customer", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	customer, err := h.customers.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyExists) {
			server.Conflict(w, "a customer with this email already exists", r.URL.Path)
			return
		}
		h.logger.Error("failed to create customer", zap.Error(err))
		server.InternalError(w, "failed to create customer", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicCustomerChanged, "created", customer.ID)
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "customer id must be a positive integer", r.URL.Path)
		return
	}
	version, ok := requestVersion(r)
	if !ok {
		server.BadRequest(w, "version must be provided via If-Match header or version parameter", r.URL.Path)
		return
	}

	var req models.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		server.ValidationFailed(w, r.URL.Path, errs)
		return
	}

	customer, err := h.customers.Update(r.Context(), id, version, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			server.NotFound(w, "customer not found", r.URL.Path)
		case errors.Is(err, services.ErrConflict):
			server.Conflict(w, "customer was modified concurrently", r.URL.Path)
		case errors.Is(err, services.ErrAlreadyExists):
			server.Conflict(w, "a customer with this email already exists", r.URL.Path)
		default:
			h.logger.Error("failed to update customer", zap.Int64("id", id), zap.Error(err))
			server.InternalError(w, "failed to update customer", r.URL.Path)
		}
		return
	}

	h.publishChange(r, event.TopicCustomerChanged, "updated", customer.ID)
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		server.BadRequest(w, "customer id must be a positive integer", r.URL.Path)
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "customer not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to delete customer", zap.Int64("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete customer", r.URL.Path)
		return
	}

	h.publishChange(r, event.TopicCustomerChanged, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
