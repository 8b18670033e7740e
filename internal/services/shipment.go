package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draughtworks/brewdeck/pkg/models"
)

// ShipmentRepository provides CRUD access to shipments nested under orders.
// Every operation scopes by the owning order ID; a shipment belonging to a
// different order is treated as not found.
type ShipmentRepository interface {
	// Get returns a single shipment scoped to its order.
	Get(ctx context.Context, orderID, id int64) (*models.Shipment, error)

	// List returns an order's shipments, oldest first. An unknown order
	// yields ErrNotFound rather than an empty list.
	List(ctx context.Context, orderID int64) ([]models.Shipment, error)

	// Create inserts a shipment under the order.
	Create(ctx context.Context, orderID int64, req models.ShipmentCreate) (*models.Shipment, error)

	// Update patches a shipment's non-nil fields, guarded by version.
	Update(ctx context.Context, orderID, id int64, version int, req models.ShipmentUpdate) (*models.Shipment, error)

	// Delete removes a shipment scoped to its order.
	Delete(ctx context.Context, orderID, id int64) error
}

// Compile-time interface guard.
var _ ShipmentRepository = (*SQLiteShipmentRepository)(nil)

// SQLiteShipmentRepository implements ShipmentRepository using SQLite.
type SQLiteShipmentRepository struct {
	db *sql.DB
}

// NewSQLiteShipmentRepository creates a ShipmentRepository.
func NewSQLiteShipmentRepository(db *sql.DB) *SQLiteShipmentRepository {
	return &SQLiteShipmentRepository{db: db}
}

const shipmentColumns = `id, version, beer_order_id, shipment_status, shipped_date,
	tracking_number, carrier, notes, created_date, updated_date`

func (r *SQLiteShipmentRepository) Get(ctx context.Context, orderID, id int64) (*models.Shipment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM beer_order_shipments WHERE id = ? AND beer_order_id = ?`,
		id, orderID)
	sh, err := scanShipmentFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get shipment %d for order %d: %w", id, orderID, err)
	}
	return sh, nil
}

func (r *SQLiteShipmentRepository) List(ctx context.Context, orderID int64) ([]models.Shipment, error) {
	if err := r.orderExists(ctx, orderID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shipmentColumns+` FROM beer_order_shipments WHERE beer_order_id = ? ORDER BY id ASC`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("list shipments for order %d: %w", orderID, err)
	}
	defer rows.Close()

	shipments := []models.Shipment{}
	for rows.Next() {
		sh, err := scanShipmentFrom(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	return shipments, nil
}

func (r *SQLiteShipmentRepository) Create(ctx context.Context, orderID int64, req models.ShipmentCreate) (*models.Shipment, error) {
	if err := r.orderExists(ctx, orderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO beer_order_shipments (version, beer_order_id, shipment_status, shipped_date, tracking_number, carrier, notes, created_date, updated_date)
		 VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?)`,
		orderID, req.ShipmentStatus, req.ShippedDate, req.TrackingNumber, req.Carrier, req.Notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create shipment for order %d: %w", orderID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create shipment: last insert id: %w", err)
	}
	return r.Get(ctx, orderID, id)
}

func (r *SQLiteShipmentRepository) Update(ctx context.Context, orderID, id int64, version int, req models.ShipmentUpdate) (*models.Shipment, error) {
	current, err := r.Get(ctx, orderID, id)
	if err != nil {
		return nil, err
	}

	status := current.ShipmentStatus
	if req.ShipmentStatus != nil {
		status = *req.ShipmentStatus
	}
	shipped := current.ShippedDate
	if req.ShippedDate != nil {
		shipped = req.ShippedDate
	}
	tracking := current.TrackingNumber
	if req.TrackingNumber != nil {
		tracking = *req.TrackingNumber
	}
	carrier := current.Carrier
	if req.Carrier != nil {
		carrier = *req.Carrier
	}
	notes := current.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE beer_order_shipments SET version = version + 1, shipment_status = ?, shipped_date = ?,
		 tracking_number = ?, carrier = ?, notes = ?, updated_date = ?
		 WHERE id = ? AND beer_order_id = ? AND version = ?`,
		status, shipped, tracking, carrier, notes, time.Now().UTC(), id, orderID, version,
	)
	if err != nil {
		return nil, fmt.Errorf("update shipment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update shipment %d: rows affected: %w", id, err)
	}
	if n == 0 {
		// The scoped Get above proved existence, so a missed guard is a
		// version conflict.
		return nil, ErrConflict
	}
	return r.Get(ctx, orderID, id)
}

func (r *SQLiteShipmentRepository) Delete(ctx context.Context, orderID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM beer_order_shipments WHERE id = ? AND beer_order_id = ?`, id, orderID)
	if err != nil {
		return fmt.Errorf("delete shipment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shipment %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteShipmentRepository) orderExists(ctx context.Context, orderID int64) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM beer_orders WHERE id = ?`, orderID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check order %d: %w", orderID, err)
	}
	if exists == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

func scanShipmentFrom(s rowScanner) (*models.Shipment, error) {
	var sh models.Shipment
	var shipped sql.NullTime
	err := s.Scan(&sh.ID, &sh.Version, &sh.BeerOrderID, &sh.ShipmentStatus, &shipped,
		&sh.TrackingNumber, &sh.Carrier, &sh.Notes, &sh.CreatedDate, &sh.UpdatedDate)
	if err != nil {
		return nil, err
	}
	if shipped.Valid {
		t := shipped.Time
		sh.ShippedDate = &t
	}
	return &sh, nil
}
