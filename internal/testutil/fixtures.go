package testutil

import (
	"github.com/draughtworks/brewdeck/pkg/models"
)

// NewBeerRequest returns a valid BeerRequest, suitable for test fixtures.
// Override individual fields through options as needed.
func NewBeerRequest(opts ...func(*models.BeerRequest)) models.BeerRequest {
	r := models.BeerRequest{
		BeerName:       "Mango Bobs",
		BeerStyle:      string(models.StyleIPA),
		UPC:            "0631234200036",
		QuantityOnHand: 120,
		Price:          9.99,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithBeerName sets the beer name.
func WithBeerName(name string) func(*models.BeerRequest) {
	return func(r *models.BeerRequest) { r.BeerName = name }
}

// WithBeerStyle sets the beer style.
func WithBeerStyle(style models.BeerStyle) func(*models.BeerRequest) {
	return func(r *models.BeerRequest) { r.BeerStyle = string(style) }
}

// WithUPC sets the UPC code.
func WithUPC(upc string) func(*models.BeerRequest) {
	return func(r *models.BeerRequest) { r.UPC = upc }
}

// WithPrice sets the price.
func WithPrice(p float64) func(*models.BeerRequest) {
	return func(r *models.BeerRequest) { r.Price = p }
}

// WithQuantity sets the quantity on hand.
func WithQuantity(q int) func(*models.BeerRequest) {
	return func(r *models.BeerRequest) { r.QuantityOnHand = q }
}

// NewCustomerRequest returns a valid CustomerRequest fixture.
func NewCustomerRequest(opts ...func(*models.CustomerRequest)) models.CustomerRequest {
	r := models.CustomerRequest{
		Name:         "Craft & Barrel Taproom",
		Email:        "orders@craftandbarrel.test",
		Phone:        "555-0142",
		AddressLine1: "12 Hops Lane",
		City:         "St Petersburg",
		State:        "FL",
		PostalCode:   "33701",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithCustomerName sets the customer name.
func WithCustomerName(name string) func(*models.CustomerRequest) {
	return func(r *models.CustomerRequest) { r.Name = name }
}

// WithEmail sets the customer email.
func WithEmail(email string) func(*models.CustomerRequest) {
	return func(r *models.CustomerRequest) { r.Email = email }
}

// NewOrderCommand returns a valid CreateOrderCommand referencing the given
// beer IDs with quantity 2 each.
func NewOrderCommand(beerIDs ...int64) models.CreateOrderCommand {
	cmd := models.CreateOrderCommand{
		CustomerRef: "test-ref",
	}
	for _, id := range beerIDs {
		cmd.Items = append(cmd.Items, models.CreateOrderItem{BeerID: id, Quantity: 2})
		cmd.PaymentAmount += 19.98
	}
	return cmd
}

// NewShipmentCreate returns a valid ShipmentCreate fixture.
func NewShipmentCreate(opts ...func(*models.ShipmentCreate)) models.ShipmentCreate {
	s := models.ShipmentCreate{
		ShipmentStatus: string(models.ShipmentPending),
		TrackingNumber: "1Z999AA10123456784",
		Carrier:        "UPS",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithShipmentStatus sets the shipment status.
func WithShipmentStatus(st models.ShipmentStatus) func(*models.ShipmentCreate) {
	return func(s *models.ShipmentCreate) { s.ShipmentStatus = string(st) }
}
