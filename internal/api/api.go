// Package api provides the HTTP handlers for the beverage-distribution REST
// surface: beers, customers, beer orders, and their nested shipments.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draughtworks/brewdeck/internal/event"
	"github.com/draughtworks/brewdeck/internal/services"
)

// Handler mounts the /api/v1 beverage routes and publishes change events.
type Handler struct {
	beers     services.BeerRepository
	customers services.CustomerRepository
	orders    services.OrderRepository
	shipments services.ShipmentRepository
	bus       event.EventBus
	logger    *zap.Logger
}

// NewHandler creates the API handler group.
func NewHandler(
	beers services.BeerRepository,
	customers services.CustomerRepository,
	orders services.OrderRepository,
	shipments services.ShipmentRepository,
	bus event.EventBus,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		beers:     beers,
		customers: customers,
		orders:    orders,
		shipments: shipments,
		bus:       bus,
		logger:    logger,
	}
}

// RegisterRoutes mounts all beverage routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/beers", h.handleListBeers)
	mux.HandleFunc("GET /api/v1/beers/{id}", h.handleGetBeer)
	mux.HandleFunc("POST /api/v1/beers", h.handleCreateBeer)
	mux.HandleFunc("PUT /api/v1/beers/{id}", h.handleUpdateBeer)
	mux.HandleFunc("DELETE /api/v1/beers/{id}", h.handleDeleteBeer)

	mux.HandleFunc("GET /api/v1/customers", h.handleListCustomers)
	mux.HandleFunc("GET /api/v1/customers/{id}", h.handleGetCustomer)
	mux.HandleFunc("POST /api/v1/customers", h.handleCreateCustomer)
	mux.HandleFunc("PUT /api/v1/customers/{id}", h.handleUpdateCustomer)
	mux.HandleFunc("DELETE /api/v1/customers/{id}", h.handleDeleteCustomer)

	mux.HandleFunc("GET /api/v1/beer-orders", h.handleListOrders)
	mux.HandleFunc("GET /api/v1/beer-orders/{id}", h.handleGetOrder)
	mux.HandleFunc("POST /api/v1/beer-orders", h.handleCreateOrder)
	mux.HandleFunc("PUT /api/v1/beer-orders/{id}", h.handleUpdateOrder)
	mux.HandleFunc("DELETE /api/v1/beer-orders/{id}", h.handleDeleteOrder)
	mux.HandleFunc("PUT /api/v1/beer-orders/{id}/status", h.handleUpdateOrderStatus)

	mux.HandleFunc("GET /api/v1/beer-orders/{orderID}/shipments", h.handleListShipments)
	mux.HandleFunc("GET /api/v1/beer-orders/{orderID}/shipments/{id}", h.handleGetShipment)
	mux.HandleFunc("POST /api/v1/beer-orders/{orderID}/shipments", h.handleCreateShipment)
	mux.HandleFunc("PATCH /api/v1/beer-orders/{orderID}/shipments/{id}", h.handleUpdateShipment)
	mux.HandleFunc("DELETE /api/v1/beer-orders/{orderID}/shipments/{id}", h.handleDeleteShipment)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pathID parses the named path segment as a positive integer ID.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseSort splits a "key,dir" sort token. A bare "key" defaults to
// ascending; an empty token yields empty key.
func parseSort(token string) (key, dir string) {
	if token == "" {
		return "", ""
	}
	parts := strings.SplitN(token, ",", 2)
	key = parts[0]
	dir = "asc"
	if len(parts) == 2 && strings.EqualFold(parts[1], "desc") {
		dir = "desc"
	}
	return key, dir
}

// publishChange emits an entity-change event on the bus. Delivery is async;
// the request never waits on feed subscribers.
func (h *Handler) publishChange(r *http.Request, topic, action string, id int64) {
	h.bus.PublishAsync(r.Context(), event.Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Source:    "api",
		Timestamp: time.Now().UTC(),
		Payload:   map[string]any{"action": action, "id": id},
	})
}
