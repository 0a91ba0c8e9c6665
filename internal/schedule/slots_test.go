package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotTimesCatalog(t *testing.T) {
	slots := SlotTimes()
	assert.Len(t, slots, 17)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "11:30", slots[7])
	assert.Equal(t, "13:30", slots[8])
	assert.Equal(t, "17:30", slots[16])
	// Lunch gap: nothing between 11:30 and 13:30.
	assert.NotContains(t, slots, "12:00")
	assert.NotContains(t, slots, "12:30")
	assert.NotContains(t, slots, "13:00")
}

func TestComputeRejectsPastDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := Compute("2026-03-09", now, nil)
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestComputeRejectsMalformedDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := Compute("10-03-2026", now, nil)
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestComputeFutureDateAllFree(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	av, err := Compute("2026-03-11", now, nil)
	require.NoError(t, err)
	assert.Equal(t, 17, av.Total)
	assert.Equal(t, 17, av.Available)
	assert.Equal(t, 0, av.Booked)
	assert.Len(t, av.AvailableSlots, 17)
}

func TestComputeMarksBookedSlots(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	av, err := Compute("2026-03-12", now, []string{"10:00", "14:30"})
	require.NoError(t, err)
	assert.Equal(t, 15, av.Available)
	assert.Equal(t, 2, av.Booked)
	for _, s := range av.Slots {
		switch s.Time {
		case "10:00", "14:30":
			assert.False(t, s.Available, "slot %s should be booked", s.Time)
		default:
			assert.True(t, s.Available, "slot %s should be free", s.Time)
		}
	}
	assert.NotContains(t, av.AvailableSlots, "10:00")
	assert.NotContains(t, av.AvailableSlots, "14:30")
}

func TestComputeSameDayCutoff(t *testing.T) {
	// 09:10: slots up to 11:00 start within 120 minutes and must be
	// excluded; 11:30 starts 140 minutes out and stays available.
	now := time.Date(2026, 3, 10, 9, 10, 0, 0, time.UTC)
	av, err := Compute("2026-03-10", now, nil)
	require.NoError(t, err)

	byTime := map[string]bool{}
	for _, s := range av.Slots {
		byTime[s.Time] = s.Available
	}
	assert.False(t, byTime["08:00"]) // already elapsed
	assert.False(t, byTime["09:30"])
	assert.False(t, byTime["10:30"])
	assert.False(t, byTime["11:00"]) // 110 minutes out, inside the buffer
	assert.True(t, byTime["11:30"])
	assert.True(t, byTime["13:30"])
	assert.True(t, byTime["17:30"])
	assert.Equal(t, 10, av.Available)
	assert.Equal(t, 0, av.Booked, "cutoff-elapsed slots count as unavailable, not booked")
}

func TestComputeSameDayCountsOnlyRealBookings(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 10, 0, 0, time.UTC)
	av, err := Compute("2026-03-10", now, []string{"14:30"})
	require.NoError(t, err)
	assert.Equal(t, 1, av.Booked)
	assert.Equal(t, 9, av.Available)
	assert.NotContains(t, av.AvailableSlots, "14:30")
}

func TestComputeSameDayLateEvening(t *testing.T) {
	// 16:30: every remaining slot falls inside the buffer.
	now := time.Date(2026, 3, 10, 16, 30, 0, 0, time.UTC)
	av, err := Compute("2026-03-10", now, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, av.Available)
	assert.Empty(t, av.AvailableSlots)
}

func TestComputeCutoffDoesNotApplyToFutureDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	av, err := Compute("2026-03-11", now, nil)
	require.NoError(t, err)
	assert.Equal(t, 17, av.Available)
}

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateDate("2026-03-10", now))
	assert.NoError(t, ValidateDate("2026-03-11", now))
	assert.ErrorIs(t, ValidateDate("2026-03-09", now), ErrPastDate)
	assert.ErrorIs(t, ValidateDate("10-03-2026", now), ErrBadDate)
	assert.ErrorIs(t, ValidateDate("", now), ErrBadDate)
}

func TestValidTimeFormat(t *testing.T) {
	assert.True(t, ValidTimeFormat("08:00"))
	assert.True(t, ValidTimeFormat("23:59"))
	assert.False(t, ValidTimeFormat("8:00"))
	assert.False(t, ValidTimeFormat("24:00"))
	assert.False(t, ValidTimeFormat("10:60"))
	assert.False(t, ValidTimeFormat("1000"))
	assert.False(t, ValidTimeFormat(""))
}

func TestValidSlotTime(t *testing.T) {
	assert.True(t, ValidSlotTime("08:00"))
	assert.True(t, ValidSlotTime("17:30"))
	assert.False(t, ValidSlotTime("12:00")) // lunch gap
	assert.False(t, ValidSlotTime("18:00")) // after closing
	assert.False(t, ValidSlotTime("08:15")) // not on the half hour
}
