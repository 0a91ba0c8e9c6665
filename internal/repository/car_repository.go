package repository

import (
	"context"
	"database/sql"

	"github.com/ducnm/oto-dealer/internal/model"
)

// CarRepo reads the car catalog. The catalog is managed out of band
// (seeded by staff), so this repository is read-only.
type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

const carColumns = "id,name,slug,brand,category,price_vnd,fuel,seats,transmission,description,image_url,is_available,created_at"

// CarFilter narrows List results. Zero values mean "no filter".
type CarFilter struct {
	Category string // exact category match
	MinPrice uint64 // inclusive lower price bound
	MaxPrice uint64 // inclusive upper price bound (0 = unbounded)
	Search   string // substring match on name
	Limit    int
	Offset   int
}

// List returns available cars matching the filter plus the total count
// for paging.
func (r *CarRepo) List(ctx context.Context, f CarFilter) ([]model.Car, int, error) {
	where := " FROM cars WHERE is_available=1"
	args := []any{}
	if f.Category != "" {
		where += " AND category=?"
		args = append(args, f.Category)
	}
	if f.MinPrice > 0 {
		where += " AND price_vnd>=?"
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where += " AND price_vnd<=?"
		args = append(args, f.MaxPrice)
	}
	if f.Search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+f.Search+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := "SELECT " + carColumns + where + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cars := []model.Car{}
	for rows.Next() {
		var c model.Car
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Brand, &c.Category, &c.PriceVND,
			&c.Fuel, &c.Seats, &c.Transmission, &c.Description, &c.ImageURL,
			&c.IsAvailable, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		cars = append(cars, c)
	}
	return cars, total, rows.Err()
}

// GetByID fetches a single car.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	var c model.Car
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+carColumns+" FROM cars WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Brand, &c.Category, &c.PriceVND,
			&c.Fuel, &c.Seats, &c.Transmission, &c.Description, &c.ImageURL,
			&c.IsAvailable, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Car{}, ErrNotFound
	}
	return c, err
}

// Exists reports whether a car id refers to a catalog entry. The
// booking handler uses this to reject bookings for unknown cars.
func (r *CarRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM cars WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
