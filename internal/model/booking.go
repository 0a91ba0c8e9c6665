package model

import "time"

// Booking statuses stored in test_drive_bookings.status. Only pending
// and confirmed bookings block a slot; cancelled and completed do not.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// TestDriveBooking models a row in the `test_drive_bookings` table.
// The booking form collects contact details directly, so a booking is
// not tied to a user account. SlotGuard is 1 while the booking blocks
// its slot (pending/confirmed) and NULL otherwise; together with the
// unique key on (showroom, preferred_date, preferred_time, slot_guard)
// it prevents two live bookings from landing on the same slot.
type TestDriveBooking struct {
	ID            uint64    // test_drive_bookings.id
	CustomerName  string    // test_drive_bookings.customer_name
	CustomerEmail string    // test_drive_bookings.customer_email
	CustomerPhone string    // test_drive_bookings.customer_phone
	Address       string    // test_drive_bookings.address (optional)
	CarID         uint64    // test_drive_bookings.car_id
	Showroom      string    // test_drive_bookings.showroom
	PreferredDate string    // test_drive_bookings.preferred_date ("YYYY-MM-DD")
	PreferredTime string    // test_drive_bookings.preferred_time ("HH:MM")
	AltDate       string    // test_drive_bookings.alt_date (optional)
	AltTime       string    // test_drive_bookings.alt_time (optional)
	Experience    string    // test_drive_bookings.experience
	LicenseNo     string    // test_drive_bookings.license_no (optional)
	Message       string    // test_drive_bookings.message (optional)
	Status        string    // test_drive_bookings.status
	SlotGuard     *uint8    // test_drive_bookings.slot_guard (1 or NULL)
	CreatedAt     time.Time // test_drive_bookings.created_at
	UpdatedAt     time.Time // test_drive_bookings.updated_at
}

// Showrooms is the fixed set of locations a test drive can be booked
// at. The booking handler rejects any value outside this list.
var Showrooms = []string{
	"Honda Quận 1",
	"Honda Quận 3",
	"Honda Quận 7",
	"Honda Thủ Đức",
}

// ValidShowroom reports whether name is one of the enumerated showrooms.
func ValidShowroom(name string) bool {
	for _, s := range Showrooms {
		if s == name {
			return true
		}
	}
	return false
}

// Driving experience levels accepted by the booking form.
var ExperienceLevels = []string{"beginner", "intermediate", "experienced"}

// ValidExperience reports whether level is a known experience level.
func ValidExperience(level string) bool {
	for _, e := range ExperienceLevels {
		if e == level {
			return true
		}
	}
	return false
}
