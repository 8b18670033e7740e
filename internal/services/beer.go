package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draughtworks/brewdeck/pkg/models"
)

// BeerFilter controls which beers are returned by List.
type BeerFilter struct {
	BeerName  string // Case-insensitive substring match on beer name.
	BeerStyle string // Exact match on beer style.
}

// BeerRepository provides CRUD access to the beer catalog.
type BeerRepository interface {
	// Get returns a single beer by ID.
	Get(ctx context.Context, id int64) (*models.Beer, error)

	// List returns a filtered, paginated list of beers.
	List(ctx context.Context, filter BeerFilter, opts ListOptions) (*ListResult[models.Beer], error)

	// Create inserts a new beer and returns it with generated fields populated.
	Create(ctx context.Context, req models.BeerRequest) (*models.Beer, error)

	// Update replaces a beer's mutable fields. The write is guarded by
	// version: a stale version returns ErrConflict.
	Update(ctx context.Context, id int64, version int, req models.BeerRequest) (*models.Beer, error)

	// Delete removes a beer by ID.
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface guard.
var _ BeerRepository = (*SQLiteBeerRepository)(nil)

// SQLiteBeerRepository implements BeerRepository using SQLite.
type SQLiteBeerRepository struct {
	db *sql.DB
}

// NewSQLiteBeerRepository creates a BeerRepository. The beers table must
// already exist (created by services.Migrations).
func NewSQLiteBeerRepository(db *sql.DB) *SQLiteBeerRepository {
	return &SQLiteBeerRepository{db: db}
}

// beerColumns is the shared column list for beer queries.
const beerColumns = `id, version, beer_name, beer_style, upc,
	quantity_on_hand, price, description, created_date, updated_date`

func (r *SQLiteBeerRepository) Get(ctx context.Context, id int64) (*models.Beer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+beerColumns+` FROM beers WHERE id = ?`, id)
	b, err := scanBeer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get beer %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteBeerRepository) List(ctx context.Context, filter BeerFilter, opts ListOptions) (*ListResult[models.Beer], error) {
	opts = normalizeListOptions(opts)

	// Validate sortBy against allowed columns.
	sortCol := "id"
	allowedSorts := map[string]string{
		"id":             "id",
		"beerName":       "beer_name",
		"beerStyle":      "beer_style",
		"upc":            "upc",
		"quantityOnHand": "quantity_on_hand",
		"price":          "price",
		"createdDate":    "created_date",
	}
	if opts.SortBy != "" {
		if col, ok := allowedSorts[opts.SortBy]; ok {
			sortCol = col
		}
	}

	// Build WHERE clause with parameterized placeholders.
	where := "1=1"
	var args []any

	if filter.BeerName != "" {
		where += " AND beer_name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+filter.BeerName+"%")
	}
	if filter.BeerStyle != "" {
		where += " AND beer_style = ?"
		args = append(args, filter.BeerStyle)
	}

	// Count total matching rows.
	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM beers WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count beers: %w", err)
	}

	orderDir := "ASC"
	if opts.SortOrder == "desc" {
		orderDir = "DESC"
	}

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	//nolint:gosec // where and sortCol are validated above, not user input
	query := fmt.Sprintf(
		"SELECT %s FROM beers WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		beerColumns, where, sortCol, orderDir,
	)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list beers: %w", err)
	}
	defer rows.Close()

	var beers []models.Beer
	for rows.Next() {
		b, err := scanBeerRow(rows)
		if err != nil {
			return nil, err
		}
		beers = append(beers, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beers: %w", err)
	}

	return &ListResult[models.Beer]{Items: beers, Total: total}, nil
}

func (r *SQLiteBeerRepository) Create(ctx context.Context, req models.BeerRequest) (*models.Beer, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO beers (version, beer_name, beer_style, upc, quantity_on_hand, price, description, created_date, updated_date)
		 VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.BeerName, req.BeerStyle, req.UPC, req.QuantityOnHand, req.Price, req.Description, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create beer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create beer: last insert id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteBeerRepository) Update(ctx context.Context, id int64, version int, req models.BeerRequest) (*models.Beer, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE beers SET version = version + 1, beer_name = ?, beer_style = ?, upc = ?,
		 quantity_on_hand = ?, price = ?, description = ?, updated_date = ?
		 WHERE id = ? AND version = ?`,
		req.BeerName, req.BeerStyle, req.UPC, req.QuantityOnHand, req.Price, req.Description,
		time.Now().UTC(), id, version,
	)
	if err != nil {
		return nil, fmt.Errorf("update beer %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update beer %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return nil, staleWriteError(ctx, r.db, "beers", id)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteBeerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM beers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete beer %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete beer %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// staleWriteError distinguishes a missing row from an optimistic-locking
// loss after a version-guarded UPDATE matched nothing.
func staleWriteError(ctx context.Context, db *sql.DB, table string, id int64) error {
	var exists int
	//nolint:gosec // table is a compile-time constant at every call site
	err := db.QueryRowContext(ctx,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBeer(row *sql.Row) (*models.Beer, error)      { return scanBeerFrom(row) }
func scanBeerRow(rows *sql.Rows) (*models.Beer, error) { return scanBeerFrom(rows) }

func scanBeerFrom(s rowScanner) (*models.Beer, error) {
	var b models.Beer
	err := s.Scan(&b.ID, &b.Version, &b.BeerName, &b.BeerStyle, &b.UPC,
		&b.QuantityOnHand, &b.Price, &b.Description, &b.CreatedDate, &b.UpdatedDate)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
