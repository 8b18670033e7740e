// Package models defines the beverage-distribution domain types shared by the
// brewdeck backend, the generated-style REST client, and the admin console.
package models

import (
	"strings"
	"time"
)

// BeerStyle categorizes a beer in the catalog.
type BeerStyle string

const (
	StyleAle     BeerStyle = "ALE"
	StylePaleAle BeerStyle = "PALE_ALE"
	StyleIPA     BeerStyle = "IPA"
	StyleLager   BeerStyle = "LAGER"
	StyleStout   BeerStyle = "STOUT"
	StylePorter  BeerStyle = "PORTER"
	StyleWheat   BeerStyle = "WHEAT"
	StylePilsner BeerStyle = "PILSNER"
	StyleSaison  BeerStyle = "SAISON"
	StyleGoseAle BeerStyle = "GOSE"
)

// Beer represents a beer in the distribution catalog.
// Version increments on every update and guards optimistic-locking writes.
type Beer struct {
	ID             int64     `json:"id"`
	Version        int       `json:"version"`
	BeerName       string    `json:"beerName"`
	BeerStyle      string    `json:"beerStyle"`
	UPC            string    `json:"upc"`
	QuantityOnHand int       `json:"quantityOnHand"`
	Price          float64   `json:"price"`
	Description    string    `json:"description,omitempty"`
	CreatedDate    time.Time `json:"createdDate"`
	UpdatedDate    time.Time `json:"updatedDate"`
}

// BeerRequest is the payload to create or update a beer.
type BeerRequest struct {
	BeerName       string  `json:"beerName"`
	BeerStyle      string  `json:"beerStyle"`
	UPC            string  `json:"upc"`
	QuantityOnHand int     `json:"quantityOnHand"`
	Price          float64 `json:"price"`
	Description    string  `json:"description,omitempty"`
}

// Validate checks field constraints and returns a map of field name to
// violation message. An empty map means the request is valid.
func (r BeerRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.BeerName) == "" {
		errs["beerName"] = "must not be blank"
	}
	if strings.TrimSpace(r.BeerStyle) == "" {
		errs["beerStyle"] = "must not be blank"
	}
	if strings.TrimSpace(r.UPC) == "" {
		errs["upc"] = "must not be blank"
	}
	if r.QuantityOnHand < 0 {
		errs["quantityOnHand"] = "must be zero or positive"
	}
	if r.Price <= 0 {
		errs["price"] = "must be greater than 0"
	}
	return errs
}
