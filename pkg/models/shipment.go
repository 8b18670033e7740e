package models

import (
	"strings"
	"time"
)

// ShipmentStatus is the delivery state of an order shipment.
type ShipmentStatus string

const (
	ShipmentPending        ShipmentStatus = "PENDING"
	ShipmentPacked         ShipmentStatus = "PACKED"
	ShipmentInTransit      ShipmentStatus = "IN_TRANSIT"
	ShipmentOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentDelivered      ShipmentStatus = "DELIVERED"
	ShipmentCancelled      ShipmentStatus = "CANCELLED"
)

// ValidShipmentStatus reports whether s is a recognized shipment status.
func ValidShipmentStatus(s string) bool {
	switch ShipmentStatus(s) {
	case ShipmentPending, ShipmentPacked, ShipmentInTransit,
		ShipmentOutForDelivery, ShipmentDelivered, ShipmentCancelled:
		return true
	}
	return false
}

// Shipment represents a shipment attached to a beer order.
type Shipment struct {
	ID             int64      `json:"id"`
	Version        int        `json:"version"`
	BeerOrderID    int64      `json:"beerOrderId"`
	ShipmentStatus string     `json:"shipmentStatus"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	TrackingNumber string     `json:"trackingNumber,omitempty"`
	Carrier        string     `json:"carrier,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedDate    time.Time  `json:"createdDate"`
	UpdatedDate    time.Time  `json:"updatedDate"`
}

// ShipmentCreate is the payload to create a shipment under an order.
type ShipmentCreate struct {
	ShipmentStatus string     `json:"shipmentStatus"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	TrackingNumber string     `json:"trackingNumber,omitempty"`
	Carrier        string     `json:"carrier,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// Validate checks field constraints and returns field violations keyed by
// JSON field name.
func (s ShipmentCreate) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(s.ShipmentStatus) == "" {
		errs["shipmentStatus"] = "must not be blank"
	} else if !ValidShipmentStatus(s.ShipmentStatus) {
		errs["shipmentStatus"] = "must be a valid shipment status"
	}
	if len(s.Notes) > 1000 {
		errs["notes"] = "must not exceed 1000 characters"
	}
	return errs
}

// ShipmentUpdate is the payload to patch a shipment. Nil fields are
// left unchanged.
type ShipmentUpdate struct {
	ShipmentStatus *string    `json:"shipmentStatus,omitempty"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	TrackingNumber *string    `json:"trackingNumber,omitempty"`
	Carrier        *string    `json:"carrier,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// Validate checks field constraints and returns field violations keyed by
// JSON field name.
func (s ShipmentUpdate) Validate() map[string]string {
	errs := map[string]string{}
	if s.ShipmentStatus != nil && !ValidShipmentStatus(*s.ShipmentStatus) {
		errs["shipmentStatus"] = "must be a valid shipment status"
	}
	if s.Notes != nil && len(*s.Notes) > 1000 {
		errs["notes"] = "must not exceed 1000 characters"
	}
	return errs
}
