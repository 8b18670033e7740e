package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/draughtworks/brewdeck/pkg/models"
)

// CustomerRepository provides CRUD access to customer accounts.
// List intentionally has no pagination: the customers endpoint returns the
// whole collection and consumers page client-side.
type CustomerRepository interface {
	// Get returns a single customer by ID.
	Get(ctx context.Context, id int64) (*models.Customer, error)

	// List returns all customers, optionally filtered by a case-insensitive
	// name substring, ordered by name.
	List(ctx context.Context, name string) ([]models.Customer, error)

	// Create inserts a new customer.
	Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error)

	// Update replaces a customer's mutable fields, guarded by version.
	Update(ctx context.Context, id int64, version int, req models.CustomerRequest) (*models.Customer, error)

	// Delete removes a customer. Customers referenced by order customer_ref
	// values are still deletable; the reference is a free-form string.
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface guard.
var _ CustomerRepository = (*SQLiteCustomerRepository)(nil)

// SQLiteCustomerRepository implements CustomerRepository using SQLite.
type SQLiteCustomerRepository struct {
	db *sql.DB
}

// NewSQLiteCustomerRepository creates a CustomerRepository.
func NewSQLiteCustomerRepository(db *sql.DB) *SQLiteCustomerRepository {
	return &SQLiteCustomerRepository{db: db}
}

const customerColumns = `id, version, name, email, phone, address_line1,
	address_line2, city, state, postal_code, created_date, updated_date`

func (r *SQLiteCustomerRepository) Get(ctx context.Context, id int64) (*models.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomerFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteCustomerRepository) List(ctx context.Context, name string) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	if name != "" {
		query += ` WHERE name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+name+"%")
	}
	query += ` ORDER BY name COLLATE NOCASE ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomerFrom(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (r *SQLiteCustomerRepository) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (version, name, email, phone, address_line1, address_line2, city, state, postal_code, created_date, updated_date)
		 VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Name, req.Email, req.Phone, req.AddressLine1, req.AddressLine2,
		req.City, req.State, req.PostalCode, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create customer: last insert id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteCustomerRepository) Update(ctx context.Context, id int64, version int, req models.CustomerRequest) (*models.Customer, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET version = version + 1, name = ?, email = ?, phone = ?,
		 address_line1 = ?, address_line2 = ?, city = ?, state = ?, postal_code = ?, updated_date = ?
		 WHERE id = ? AND version = ?`,
		req.Name, req.Email, req.Phone, req.AddressLine1, req.AddressLine2,
		req.City, req.State, req.PostalCode, time.Now().UTC(), id, version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update customer %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return nil, staleWriteError(ctx, r.db, "customers", id)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteCustomerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func scanCustomerFrom(s rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := s.Scan(&c.ID, &c.Version, &c.Name, &c.Email, &c.Phone, &c.AddressLine1,
		&c.AddressLine2, &c.City, &c.State, &c.PostalCode, &c.CreatedDate, &c.UpdatedDate)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
