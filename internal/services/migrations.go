package services

import (
	"database/sql"

	"github.com/draughtworks/brewdeck/internal/store"
)

// Migrations defines the beverage-distribution schema. Order lines and
// shipments cascade with their order.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create beer, customer, order, line, and shipment tables",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE beers (
					id               INTEGER PRIMARY KEY AUTOINCREMENT,
					version          INTEGER NOT NULL DEFAULT 0,
					beer_name        TEXT NOT NULL,
					beer_style       TEXT NOT NULL,
					upc              TEXT NOT NULL,
					quantity_on_hand INTEGER NOT NULL DEFAULT 0,
					price            REAL NOT NULL,
					description      TEXT NOT NULL DEFAULT '',
					created_date     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_date     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_beers_name ON beers(beer_name)`,
				`CREATE INDEX idx_beers_style ON beers(beer_style)`,
				`CREATE TABLE customers (
					id            INTEGER PRIMARY KEY AUTOINCREMENT,
					version       INTEGER NOT NULL DEFAULT 0,
					name          TEXT NOT NULL,
					email         TEXT NOT NULL UNIQUE,
					phone         TEXT NOT NULL DEFAULT '',
					address_line1 TEXT NOT NULL,
					address_line2 TEXT NOT NULL DEFAULT '',
					city          TEXT NOT NULL DEFAULT '',
					state         TEXT NOT NULL DEFAULT '',
					postal_code   TEXT NOT NULL DEFAULT '',
					created_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE beer_orders (
					id             INTEGER PRIMARY KEY AUTOINCREMENT,
					version        INTEGER NOT NULL DEFAULT 0,
					customer_ref   TEXT NOT NULL DEFAULT '',
					payment_amount REAL NOT NULL DEFAULT 0,
					status         TEXT NOT NULL DEFAULT 'PENDING',
					created_date   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_date   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_beer_orders_status ON beer_orders(status)`,
				`CREATE TABLE beer_order_lines (
					id                 INTEGER PRIMARY KEY AUTOINCREMENT,
					beer_order_id      INTEGER NOT NULL REFERENCES beer_orders(id) ON DELETE CASCADE,
					beer_id            INTEGER NOT NULL REFERENCES beers(id),
					order_quantity     INTEGER NOT NULL,
					quantity_allocated INTEGER NOT NULL DEFAULT 0,
					status             TEXT NOT NULL DEFAULT 'PENDING'
				)`,
				`CREATE INDEX idx_bol_order ON beer_order_lines(beer_order_id)`,
				`CREATE INDEX idx_bol_beer ON beer_order_lines(beer_id)`,
				`CREATE TABLE beer_order_shipments (
					id              INTEGER PRIMARY KEY AUTOINCREMENT,
					version         INTEGER NOT NULL DEFAULT 0,
					beer_order_id   INTEGER NOT NULL REFERENCES beer_orders(id) ON DELETE CASCADE,
					shipment_status TEXT NOT NULL,
					shipped_date    DATETIME,
					tracking_number TEXT NOT NULL DEFAULT '',
					carrier         TEXT NOT NULL DEFAULT '',
					notes           TEXT NOT NULL DEFAULT '',
					created_date    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_date    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_bos_order ON beer_order_shipments(beer_order_id)`,
				`CREATE INDEX idx_bos_status ON beer_order_shipments(shipment_status)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
}
