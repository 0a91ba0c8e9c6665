package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ducnm/oto-dealer/internal/model"
)

// BookingRepo persists test drive bookings in the
// 'test_drive_bookings' table. Double booking is prevented by the
// unique key (showroom, preferred_date, preferred_time, slot_guard):
// slot_guard is 1 while the booking is pending or confirmed and NULL
// otherwise, and MySQL unique indexes ignore NULLs, so at most one
// live booking can exist per slot regardless of what any earlier
// availability read claimed.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id,customer_name,customer_email,customer_phone,address,car_id,showroom,preferred_date,preferred_time,alt_date,alt_time,experience,license_no,message,status,created_at,updated_at"

// Create inserts a booking with status pending and the slot guard set.
// A duplicate-key failure on the slot key surfaces as ErrSlotTaken.
func (r *BookingRepo) Create(ctx context.Context, b *model.TestDriveBooking) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO test_drive_bookings
		(customer_name, customer_email, customer_phone, address, car_id, showroom,
		 preferred_date, preferred_time, alt_date, alt_time, experience, license_no,
		 message, status, slot_guard)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,1)`,
		b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Address, b.CarID, b.Showroom,
		b.PreferredDate, b.PreferredTime, nullEmpty(b.AltDate), nullEmpty(b.AltTime),
		b.Experience, nullEmpty(b.LicenseNo), nullEmpty(b.Message), model.BookingPending)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlotTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingPending
	return nil
}

// BookedTimes returns the preferred_time values of every pending or
// confirmed booking at the given showroom and date. Cancelled and
// completed bookings do not block their slots.
func (r *BookingRepo) BookedTimes(ctx context.Context, showroom, date string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT preferred_time FROM test_drive_bookings WHERE showroom=? AND preferred_date=? AND status IN (?,?)",
		showroom, date, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// GetByID fetches a single booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.TestDriveBooking, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM test_drive_bookings WHERE id=? LIMIT 1", id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return model.TestDriveBooking{}, ErrNotFound
	}
	return b, err
}

// UpdateStatus transitions a booking and keeps the slot guard in sync:
// pending/confirmed keep the guard, cancelled/completed release it so
// the slot becomes bookable again.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	guard := sql.NullInt16{}
	if status == model.BookingPending || status == model.BookingConfirmed {
		guard = sql.NullInt16{Int16: 1, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE test_drive_bookings SET status=?, slot_guard=? WHERE id=?",
		status, guard, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns bookings matching the optional status, showroom and
// date filters, newest first. Empty filter values match everything.
func (r *BookingRepo) List(ctx context.Context, status, showroom, date string) ([]model.TestDriveBooking, error) {
	q := "SELECT " + bookingColumns + " FROM test_drive_bookings WHERE 1=1"
	args := []any{}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	if showroom != "" {
		q += " AND showroom=?"
		args = append(args, showroom)
	}
	if date != "" {
		q += " AND preferred_date=?"
		args = append(args, date)
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TestDriveBooking{}
	for rows.Next() {
		b, err := scanBookingRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBookingFrom(s rowScanner) (model.TestDriveBooking, error) {
	var (
		b                                model.TestDriveBooking
		altDate, altTime, licenseNo, msg sql.NullString
	)
	err := s.Scan(&b.ID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.Address,
		&b.CarID, &b.Showroom, &b.PreferredDate, &b.PreferredTime,
		&altDate, &altTime, &b.Experience, &licenseNo, &msg,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.TestDriveBooking{}, err
	}
	b.AltDate = altDate.String
	b.AltTime = altTime.String
	b.LicenseNo = licenseNo.String
	b.Message = msg.String
	return b, nil
}

func scanBooking(row *sql.Row) (model.TestDriveBooking, error) { return scanBookingFrom(row) }

func scanBookingRows(rows *sql.Rows) (model.TestDriveBooking, error) {
	return scanBookingFrom(rows)
}

// nullEmpty maps "" to NULL so optional columns stay NULL instead of
// accumulating empty strings.
func nullEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
