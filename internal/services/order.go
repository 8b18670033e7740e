package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/draughtworks/brewdeck/internal/store"
	"github.com/draughtworks/brewdeck/pkg/models"
)

// OrderRepository provides CRUD access to beer orders and their lines.
// List returns the full (optionally status-filtered) collection; the orders
// endpoint is unpaged and consumers sort and page client-side.
type OrderRepository interface {
	// Get returns a single order with its lines.
	Get(ctx context.Context, id int64) (*models.BeerOrder, error)

	// List returns all orders with lines, newest first, optionally filtered
	// by status.
	List(ctx context.Context, status string) ([]models.BeerOrder, error)

	// Create inserts an order and its lines from a command. Beer names on the
	// lines are resolved from the catalog; an unknown beer ID yields
	// ErrNotFound.
	Create(ctx context.Context, cmd models.CreateOrderCommand) (*models.BeerOrder, error)

	// Update replaces an order's payment, reference, and lines, guarded by
	// version.
	Update(ctx context.Context, id int64, version int, cmd models.CreateOrderCommand) (*models.BeerOrder, error)

	// UpdateStatus transitions an order's status, guarded by version.
	UpdateStatus(ctx context.Context, id int64, version int, status string) (*models.BeerOrder, error)

	// Delete removes an order and cascades to its lines and shipments.
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface guard.
var _ OrderRepository = (*SQLiteOrderRepository)(nil)

// SQLiteOrderRepository implements OrderRepository using SQLite.
type SQLiteOrderRepository struct {
	st *store.SQLiteStore
}

// NewSQLiteOrderRepository creates an OrderRepository. Order writes span the
// beer_orders and beer_order_lines tables, so this repository needs the
// store's transaction helper rather than a bare *sql.DB.
func NewSQLiteOrderRepository(st *store.SQLiteStore) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{st: st}
}

const orderColumns = `id, version, customer_ref, payment_amount, status, created_date, updated_date`

func (r *SQLiteOrderRepository) Get(ctx context.Context, id int64) (*models.BeerOrder, error) {
	row := r.st.DB().QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM beer_orders WHERE id = ?`, id)
	o, err := scanOrderFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	lines, err := r.linesFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[id]
	if o.Lines == nil {
		o.Lines = []models.BeerOrderLine{}
	}
	return o, nil
}

func (r *SQLiteOrderRepository) List(ctx context.Context, status string) ([]models.BeerOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM beer_orders`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_date DESC, id DESC`

	rows, err := r.st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.BeerOrder
	var ids []int64
	for rows.Next() {
		o, err := scanOrderFrom(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
		if orders[i].Lines == nil {
			orders[i].Lines = []models.BeerOrderLine{}
		}
	}
	return orders, nil
}

func (r *SQLiteOrderRepository) Create(ctx context.Context, cmd models.CreateOrderCommand) (*models.BeerOrder, error) {
	var id int64
	err := r.st.Tx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO beer_orders (version, customer_ref, payment_amount, status, created_date, updated_date)
			 VALUES (0, ?, ?, ?, ?, ?)`,
			cmd.CustomerRef, cmd.PaymentAmount, string(models.OrderStatusPending), now, now,
		)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create order: last insert id: %w", err)
		}
		return insertLines(ctx, tx, id, cmd.Items)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *SQLiteOrderRepository) Update(ctx context.Context, id int64, version int, cmd models.CreateOrderCommand) (*models.BeerOrder, error) {
	err := r.st.Tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE beer_orders SET version = version + 1, customer_ref = ?, payment_amount = ?, updated_date = ?
			 WHERE id = ? AND version = ?`,
			cmd.CustomerRef, cmd.PaymentAmount, time.Now().UTC(), id, version,
		)
		if err != nil {
			return fmt.Errorf("update order %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update order %d: rows affected: %w", id, err)
		}
		if n == 0 {
			return staleWriteErrorTx(ctx, tx, "beer_orders", id)
		}

		// Replace lines wholesale. Line-level identity is not preserved
		// across an order update, matching the command-style API.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM beer_order_lines WHERE beer_order_id = ?`, id); err != nil {
			return fmt.Errorf("clear order %d lines: %w", id, err)
		}
		return insertLines(ctx, tx, id, cmd.Items)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *SQLiteOrderRepository) UpdateStatus(ctx context.Context, id int64, version int, status string) (*models.BeerOrder, error) {
	res, err := r.st.DB().ExecContext(ctx,
		`UPDATE beer_orders SET version = version + 1, status = ?, updated_date = ?
		 WHERE id = ? AND version = ?`,
		status, time.Now().UTC(), id, version,
	)
	if err != nil {
		return nil, fmt.Errorf("update order %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update order %d status: rows affected: %w", id, err)
	}
	if n == 0 {
		return nil, staleWriteError(ctx, r.st.DB(), "beer_orders", id)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteOrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.st.DB().ExecContext(ctx, `DELETE FROM beer_orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertLines inserts command items as order lines, resolving beer names from
// the catalog. Missing beers fail the transaction with ErrNotFound.
func insertLines(ctx context.Context, tx *sql.Tx, orderID int64, items []models.CreateOrderItem) error {
	for _, it := range items {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM beers WHERE id = ?`, it.BeerID).Scan(&exists); err != nil {
			return fmt.Errorf("check beer %d: %w", it.BeerID, err)
		}
		if exists == 0 {
			return fmt.Errorf("beer %d: %w", it.BeerID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO beer_order_lines (beer_order_id, beer_id, order_quantity, quantity_allocated, status)
			 VALUES (?, ?, ?, 0, ?)`,
			orderID, it.BeerID, it.Quantity, string(models.LineStatusPending),
		); err != nil {
			return fmt.Errorf("insert line for beer %d: %w", it.BeerID, err)
		}
	}
	return nil
}

// linesFor loads lines for the given order IDs in one query, keyed by order.
func (r *SQLiteOrderRepository) linesFor(ctx context.Context, ids []int64) (map[int64][]models.BeerOrderLine, error) {
	result := make(map[int64][]models.BeerOrderLine, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // placeholders is a generated "?,?,..." list, not user input
	query := fmt.Sprintf(
		`SELECT l.id, l.beer_order_id, l.beer_id, b.beer_name, l.order_quantity, l.quantity_allocated, l.status
		 FROM beer_order_lines l JOIN beers b ON b.id = l.beer_id
		 WHERE l.beer_order_id IN (%s) ORDER BY l.id ASC`, placeholders)

	rows, err := r.st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var l models.BeerOrderLine
		if err := rows.Scan(&l.ID, &orderID, &l.BeerID, &l.BeerName,
			&l.OrderQuantity, &l.QuantityAllocated, &l.Status); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		result[orderID] = append(result[orderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return result, nil
}

// staleWriteErrorTx is staleWriteError for callers already inside a transaction.
func staleWriteErrorTx(ctx context.Context, tx *sql.Tx, table string, id int64) error {
	var exists int
	//nolint:gosec // table is a compile-time constant at every call site
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s %d: %w", table, id, err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func scanOrderFrom(s rowScanner) (*models.BeerOrder, error) {
	var o models.BeerOrder
	err := s.Scan(&o.ID, &o.Version, &o.CustomerRef, &o.PaymentAmount,
		&o.Status, &o.CreatedDate, &o.UpdatedDate)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
