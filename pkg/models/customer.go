package models

import (
	"strings"
	"time"
)

// Customer represents a distribution customer account.
type Customer struct {
	ID           int64     `json:"id"`
	Version      int       `json:"version"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 string    `json:"addressLine2,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postalCode,omitempty"`
	CreatedDate  time.Time `json:"createdDate"`
	UpdatedDate  time.Time `json:"updatedDate"`
}

// CustomerRequest is the payload to create or update a customer.
type CustomerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
}

// Validate checks field constraints and returns field violations keyed by
// JSON field name.
func (r CustomerRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "must not be blank"
	}
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "must not be blank"
	} else if !strings.Contains(r.Email, "@") {
		errs["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(r.AddressLine1) == "" {
		errs["addressLine1"] = "must not be blank"
	}
	return errs
}
