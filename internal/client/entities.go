package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/draughtworks/brewdeck/pkg/models"
)

// listRetry is the retry policy shared by the console's list fetches.
var listRetry = RetryConfig{Retry: 2, RetryDelay: 300 * time.Millisecond}

// BeerListParams are the console-facing list parameters. Page is 1-based
// here; the wire protocol is zero-based and the translation happens inside
// List.
type BeerListParams struct {
	Page      int
	Size      int
	BeerName  string
	BeerStyle string
	Sort      string // "key,dir" token, empty for server default.
}

// BeerService calls the /api/v1/beers endpoints.
type BeerService struct {
	c *Client
}

// Beers returns the beer service.
func (c *Client) Beers() *BeerService { return &BeerService{c: c} }

// List fetches one page of beers. UI pages start at 1; page 0 or below is
// treated as page 1.
func (s *BeerService) List(ctx context.Context, p BeerListParams) (*models.Page[models.Beer], error) {
	if p.Page < 1 {
		p.Page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page-1))
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.BeerName != "" {
		q.Set("beerName", p.BeerName)
	}
	if p.BeerStyle != "" {
		q.Set("beerStyle", p.BeerStyle)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}

	var page models.Page[models.Beer]
	if err := s.c.Get(ctx, "/api/v1/beers?"+q.Encode(), &page, listRetry); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches one beer.
func (s *BeerService) Get(ctx context.Context, id int64) (*models.Beer, error) {
	var beer models.Beer
	if err := s.c.Get(ctx, fmt.Sprintf("/api/v1/beers/%d", id), &beer, listRetry); err != nil {
		return nil, err
	}
	return &beer, nil
}

// Create adds a beer to the catalog.
func (s *BeerService) Create(ctx context.Context, req models.BeerRequest) (*models.Beer, error) {
	var beer models.Beer
	if err := s.c.Post(ctx, "/api/v1/beers", req, &beer); err != nil {
		return nil, err
	}
	return &beer, nil
}

// Update replaces a beer, guarded by the version the caller last observed.
func (s *BeerService) Update(ctx context.Context, id int64, version int, req models.BeerRequest) (*models.Beer, error) {
	var beer models.Beer
	if err := s.c.Put(ctx, fmt.Sprintf("/api/v1/beers/%d", id), version, req, &beer); err != nil {
		return nil, err
	}
	return &beer, nil
}

// Delete removes a beer.
func (s *BeerService) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/api/v1/beers/%d", id))
}

// CustomerService calls the /api/v1/customers endpoints. The list endpoint
// returns the whole collection; paging happens client-side.
type CustomerService struct {
	c *Client
}

// Customers returns the customer service.
func (c *Client) Customers() *CustomerService { return &CustomerService{c: c} }

// List fetches all customers, optionally filtered by name substring.
func (s *CustomerService) List(ctx context.Context, name string) ([]models.Customer, error) {
	path := "/api/v1/customers"
	if name != "" {
		path += "?name=" + url.QueryEscape(name)
	}

	var customers []models.Customer
	if err := s.c.Get(ctx, path, &customers, listRetry); err != nil {
		return nil, err
	}
	return customers, nil
}

// Get fetches one customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := s.c.Get(ctx, fmt.Sprintf("/api/v1/customers/%d", id), &customer, listRetry); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Create adds a customer.
func (s *CustomerService) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	var customer models.Customer
	if err := s.c.Post(ctx, "/api/v1/customers", req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update replaces a customer, guarded by version.
func (s *CustomerService) Update(ctx context.Context, id int64, version int, req models.CustomerRequest) (*models.Customer, error) {
	var customer models.Customer
	if err := s.c.Put(ctx, fmt.Sprintf("/api/v1/customers/%d", id), version, req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Delete removes a customer.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/api/v1/customers/%d", id))
}

// OrderService calls the /api/v1/beer-orders endpoints. The list endpoint is
// unpaged; sorting and paging happen client-side.
type OrderService struct {
	c *Client
}

// Orders returns the order service.
func (c *Client) Orders() *OrderService { return &OrderService{c: c} }

// List fetches all orders, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status string) ([]models.BeerOrder, error) {
	path := "/api/v1/beer-orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var orders []models.BeerOrder
	if err := s.c.Get(ctx, path, &orders, listRetry); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get fetches one order with its lines.
func (s *OrderService) Get(ctx context.Context, id int64) (*models.BeerOrder, error) {
	var order models.BeerOrder
	if err := s.c.Get(ctx, fmt.Sprintf("/api/v1/beer-orders/%d", id), &order, listRetry); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create places an order.
func (s *OrderService) Create(ctx context.Context, cmd models.CreateOrderCommand) (*models.BeerOrder, error) {
	var order models.BeerOrder
	if err := s.c.Post(ctx, "/api/v1/beer-orders", cmd, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update replaces an order's payment, reference, and lines.
func (s *OrderService) Update(ctx context.Context, id int64, version int, cmd models.CreateOrderCommand) (*models.BeerOrder, error) {
	var order models.BeerOrder
	if err := s.c.Put(ctx, fmt.Sprintf("/api/v1/beer-orders/%d", id), version, cmd, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus transitions an order's lifecycle status.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, version int, status string) (*models.BeerOrder, error) {
	var order models.BeerOrder
	body := map[string]string{"status": status}
	if err := s.c.Put(ctx, fmt.Sprintf("/api/v1/beer-orders/%d/status", id), version, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes an order and its lines.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/api/v1/beer-orders/%d", id))
}

// ShipmentService calls the shipment endpoints nested under beer-orders.
type ShipmentService struct {
	c *Client
}

// Shipments returns the shipment service.
func (c *Client) Shipments() *ShipmentService { return &ShipmentService{c: c} }

// List fetches an order's shipments.
func (s *ShipmentService) List(ctx context.Context, orderID int64) ([]models.Shipment, error) {
	var shipments []models.Shipment
	path := fmt.Sprintf("/api/v1/beer-orders/%d/shipments", orderID)
	if err := s.c.Get(ctx, path, &shipments, listRetry); err != nil {
		return nil, err
	}
	return shipments, nil
}

// Get fetches one shipment scoped to its order.
func (s *ShipmentService) Get(ctx context.Context, orderID, id int64) (*models.Shipment, error) {
	var shipment models.Shipment
	path := fmt.Sprintf("/api/v1/beer-orders/%d/shipments/%d", orderID, id)
	if err := s.c.Get(ctx, path, &shipment, listRetry); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// Create adds a shipment under an order.
func (s *ShipmentService) Create(ctx context.Context, orderID int64, req models.ShipmentCreate) (*models.Shipment, error) {
	var shipment models.Shipment
	path := fmt.Sprintf("/api/v1/beer-orders/%d/shipments", orderID)
	if err := s.c.Post(ctx, path, req, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// Update patches a shipment's provided fields.
func (s *ShipmentService) Update(ctx context.Context, orderID, id int64, version int, req models.ShipmentUpdate) (*models.Shipment, error) {
	var shipment models.Shipment
	path := fmt.Sprintf("/api/v1/beer-orders/%d/shipments/%d", orderID, id)
	if err := s.c.Patch(ctx, path, version, req, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// Delete removes a shipment.
func (s *ShipmentService) Delete(ctx context.Context, orderID, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/api/v1/beer-orders/%d/shipments/%d", orderID, id))
}
