package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducnm/oto-dealer/internal/model"
)

func testBooking() model.TestDriveBooking {
	return model.TestDriveBooking{
		CustomerName:  "Nguyễn Văn A",
		CustomerEmail: "a@test.com",
		CustomerPhone: "0901234567",
		CarID:         3,
		Showroom:      "Honda Quận 1",
		PreferredDate: "2099-01-01",
		PreferredTime: "10:00",
		Experience:    "beginner",
	}
}

func TestBookingCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO test_drive_bookings").
		WillReturnResult(sqlmock.NewResult(11, 1))

	b := testBooking()
	r := NewBookingRepo(db)
	require.NoError(t, r.Create(context.Background(), &b))
	assert.Equal(t, uint64(11), b.ID)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateSlotCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO test_drive_bookings").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry for key 'uq_bookings_slot'"))

	b := testBooking()
	r := NewBookingRepo(db)
	assert.ErrorIs(t, r.Create(context.Background(), &b), ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedTimesFiltersByLiveStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT preferred_time FROM test_drive_bookings").
		WithArgs("Honda Quận 1", "2099-01-01", model.BookingPending, model.BookingConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"preferred_time"}).AddRow("10:00").AddRow("14:30"))

	r := NewBookingRepo(db)
	times, err := r.BookedTimes(context.Background(), "Honda Quận 1", "2099-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "14:30"}, times)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusReleasesSlotGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Cancelling must write a NULL guard so the slot frees up.
	mock.ExpectExec("UPDATE test_drive_bookings SET status=").
		WithArgs(model.BookingCancelled, sqlmock.AnyArg(), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewBookingRepo(db)
	require.NoError(t, r.UpdateStatus(context.Background(), 11, model.BookingCancelled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE test_drive_bookings SET status=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewBookingRepo(db)
	assert.ErrorIs(t, r.UpdateStatus(context.Background(), 999, model.BookingConfirmed), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
