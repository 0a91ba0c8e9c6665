// Package schedule computes bookable test drive time slots. The
// calculator is pure: the clock and the set of already booked times
// are passed in, so handlers own all I/O.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrPastDate is returned when availability is requested for a date
// before today.
var ErrPastDate = errors.New("date is in the past")

// ErrBadDate is returned when the date does not parse as YYYY-MM-DD.
var ErrBadDate = errors.New("invalid date")

// CutoffMinutes is the same-day preparation buffer: when the requested
// date is today, slots starting within this many minutes of now are
// not bookable.
const CutoffMinutes = 120

// timeRe matches 24-hour HH:MM.
var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeFormat reports whether s is a 24-hour HH:MM string.
func ValidTimeFormat(s string) bool { return timeRe.MatchString(s) }

// Slot is one half-hour appointment window annotated with whether it
// can still be booked.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Availability is the full result for one showroom and date. Booked
// counts only slots held by live bookings; same-day slots lost to the
// cutoff are unavailable but not booked.
type Availability struct {
	Slots          []Slot   `json:"slots"`
	AvailableSlots []string `json:"availableSlots"`
	Total          int      `json:"total"`
	Available      int      `json:"available"`
	Booked         int      `json:"booked"`
}

// ValidateDate checks a requested date without touching any booking
// data: it must parse as YYYY-MM-DD and not lie before today in now's
// location. Handlers call this before loading bookings so a bad date
// never costs a database round trip.
func ValidateDate(date string, now time.Time) error {
	day, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return ErrBadDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return ErrPastDate
	}
	return nil
}

// SlotTimes returns the fixed business-day slot catalog: 08:00 through
// 11:30 and 13:30 through 17:30 in 30-minute steps, leaving the lunch
// break out.
func SlotTimes() []string {
	out := make([]string, 0, 17)
	appendRange := func(startH, startM, endH, endM int) {
		for h, m := startH, startM; h < endH || (h == endH && m <= endM); {
			out = append(out, fmt.Sprintf("%02d:%02d", h, m))
			m += 30
			if m >= 60 {
				m -= 60
				h++
			}
		}
	}
	appendRange(8, 0, 11, 30)
	appendRange(13, 30, 17, 30)
	return out
}

// ValidSlotTime reports whether t is one of the catalog slots.
func ValidSlotTime(t string) bool {
	for _, s := range SlotTimes() {
		if s == t {
			return true
		}
	}
	return false
}

// Compute builds the availability for a date given the current time
// and the times already taken by pending or confirmed bookings. The
// date must be today or later; when it is today, slots starting within
// CutoffMinutes of now are marked unavailable as well.
func Compute(date string, now time.Time, bookedTimes []string) (Availability, error) {
	if err := ValidateDate(date, now); err != nil {
		return Availability{}, err
	}
	day, _ := time.ParseInLocation("2006-01-02", date, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = true
	}

	isToday := day.Equal(today)
	cutoff := now.Add(CutoffMinutes * time.Minute)

	av := Availability{}
	for _, t := range SlotTimes() {
		if booked[t] {
			av.Booked++
		}
		free := !booked[t]
		if free && isToday {
			var h, m int
			fmt.Sscanf(t, "%d:%d", &h, &m)
			start := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, now.Location())
			if start.Before(cutoff) {
				free = false
			}
		}
		av.Slots = append(av.Slots, Slot{Time: t, Available: free})
		if free {
			av.AvailableSlots = append(av.AvailableSlots, t)
			av.Available++
		}
	}
	av.Total = len(av.Slots)
	return av, nil
}
