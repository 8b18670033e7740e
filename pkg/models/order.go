package models

import "time"

// OrderStatus is the lifecycle state of a beer order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether s is a recognized order status.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// LineStatus is the allocation state of a single order line.
type LineStatus string

const (
	LineStatusPending     LineStatus = "PENDING"
	LineStatusAllocated   LineStatus = "ALLOCATED"
	LineStatusBackordered LineStatus = "BACKORDERED"
	LineStatusShipped     LineStatus = "SHIPPED"
)

// BeerOrder represents a customer order with its line items.
type BeerOrder struct {
	ID            int64           `json:"id"`
	Version       int             `json:"version"`
	CustomerRef   string          `json:"customerRef,omitempty"`
	PaymentAmount float64         `json:"paymentAmount"`
	Status        string          `json:"status"`
	Lines         []BeerOrderLine `json:"lines"`
	CreatedDate   time.Time       `json:"createdDate"`
	UpdatedDate   time.Time       `json:"updatedDate"`
}

// BeerOrderLine represents a single beer position inside an order.
type BeerOrderLine struct {
	ID                int64  `json:"id"`
	BeerID            int64  `json:"beerId"`
	BeerName          string `json:"beerName"`
	OrderQuantity     int    `json:"orderQuantity"`
	QuantityAllocated int    `json:"quantityAllocated"`
	Status            string `json:"status"`
}

// CreateOrderItem is one requested line in an order command.
type CreateOrderItem struct {
	BeerID   int64 `json:"beerId"`
	Quantity int   `json:"quantity"`
}

// CreateOrderCommand is the payload to create or replace a beer order.
type CreateOrderCommand struct {
	CustomerRef   string            `json:"customerRef,omitempty"`
	PaymentAmount float64           `json:"paymentAmount"`
	Items         []CreateOrderItem `json:"items"`
}

// Validate checks field constraints and returns field violations keyed by
// JSON field name.
func (c CreateOrderCommand) Validate() map[string]string {
	errs := map[string]string{}
	if c.PaymentAmount < 0 {
		errs["paymentAmount"] = "must be zero or positive"
	}
	if len(c.Items) == 0 {
		errs["items"] = "must contain at least one item"
	}
	for _, it := range c.Items {
		if it.BeerID <= 0 {
			errs["items.beerId"] = "must reference an existing beer"
		}
		if it.Quantity <= 0 {
			errs["items.quantity"] = "must be positive"
		}
	}
	return errs
}
