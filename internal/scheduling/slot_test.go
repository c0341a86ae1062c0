package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, s string) Slot {
	t.Helper()
	slot, err := ParseSlot(s)
	require.NoError(t, err)
	return slot
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		start   time.Duration
		end     time.Duration
	}{
		{name: "plain", input: "09:00-10:00", start: 9 * time.Hour, end: 10 * time.Hour},
		{name: "with spaces", input: " 09:00 - 10:00 ", start: 9 * time.Hour, end: 10 * time.Hour},
		{name: "half hour", input: "13:30-14:30", start: 13*time.Hour + 30*time.Minute, end: 14*time.Hour + 30*time.Minute},
		{name: "missing dash", input: "09:00", wantErr: true},
		{name: "garbage start", input: "nine-10:00", wantErr: true},
		{name: "garbage end", input: "09:00-ten", wantErr: true},
		{name: "end before start", input: "10:00-09:00", wantErr: true},
		{name: "zero length", input: "09:00-09:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "too many parts", input: "09:00-10:00-11:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := ParseSlot(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSlot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, slot.Start)
			assert.Equal(t, tt.end, slot.End)
		})
	}
}

func TestSlotString(t *testing.T) {
	assert.Equal(t, "09:00-10:00", mustSlot(t, "09:00-10:00").String())
	assert.Equal(t, "08:05-09:35", mustSlot(t, " 08:05 - 09:35").String())
}

func TestSlotContains(t *testing.T) {
	slot := mustSlot(t, "09:00-10:00")
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, slot.Contains(day.Add(9*time.Hour)), "start boundary is inside")
	assert.True(t, slot.Contains(day.Add(9*time.Hour+30*time.Minute)))
	assert.False(t, slot.Contains(day.Add(10*time.Hour)), "end boundary is outside")
	assert.False(t, slot.Contains(day.Add(8*time.Hour)))
}

func TestWindowOverlaps(t *testing.T) {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	a := WindowAt(base)

	// A window ending exactly when another begins does not overlap.
	assert.False(t, a.Overlaps(WindowAt(base.Add(time.Hour))))
	assert.False(t, WindowAt(base.Add(time.Hour)).Overlaps(a))

	// Identical start is a conflict.
	assert.True(t, a.Overlaps(WindowAt(base)))

	// Partial overlap in either direction.
	assert.True(t, a.Overlaps(WindowAt(base.Add(30*time.Minute))))
	assert.True(t, a.Overlaps(WindowAt(base.Add(-30*time.Minute))))

	// Fully disjoint.
	assert.False(t, a.Overlaps(WindowAt(base.Add(2*time.Hour))))
}

func TestFreeSlotsOrderingAndFiltering(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slots := []Slot{
		mustSlot(t, "11:00-12:00"),
		mustSlot(t, "09:00-10:00"),
		mustSlot(t, "10:00-11:00"),
	}

	// 10:00 is booked; 09:00 and 11:00 survive, ordered ascending.
	busy := []Window{WindowAt(day.Add(10 * time.Hour))}
	free := FreeSlots(slots, day, busy)
	require.Len(t, free, 2)
	assert.Equal(t, "09:00-10:00", free[0].String())
	assert.Equal(t, "11:00-12:00", free[1].String())
}

func TestFreeSlotsMutuallyNonOverlapping(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Overlapping declarations collapse to a non-overlapping sequence.
	slots := []Slot{
		mustSlot(t, "09:00-10:00"),
		mustSlot(t, "09:30-10:30"),
		mustSlot(t, "10:00-11:00"),
	}

	free := FreeSlots(slots, day, nil)
	require.Len(t, free, 2)
	assert.Equal(t, "09:00-10:00", free[0].String())
	assert.Equal(t, "10:00-11:00", free[1].String())

	for i := 1; i < len(free); i++ {
		assert.False(t, free[i].WindowOn(day).Overlaps(free[i-1].WindowOn(day)))
	}
}

func TestFreeSlotsEmptyAvailability(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, FreeSlots(nil, day, nil))
	assert.Empty(t, FreeSlots([]Slot{}, day, []Window{WindowAt(day.Add(9 * time.Hour))}))
}

func TestFreeSlotsPartialOverlapWithBooking(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slots := []Slot{mustSlot(t, "09:00-10:00"), mustSlot(t, "10:00-11:00")}

	// A booking at 09:30 blocks both the 09:00 and 10:00 slots.
	busy := []Window{WindowAt(day.Add(9*time.Hour + 30*time.Minute))}
	assert.Empty(t, FreeSlots(slots, day, busy))
}

func TestValidateBooking(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slots := []Slot{mustSlot(t, "09:00-10:00"), mustSlot(t, "10:00-11:00")}

	t.Run("first booking succeeds", func(t *testing.T) {
		assert.NoError(t, ValidateBooking(slots, day.Add(9*time.Hour), nil))
	})

	t.Run("overlapping booking conflicts", func(t *testing.T) {
		busy := []Window{WindowAt(day.Add(9 * time.Hour))}
		err := ValidateBooking(slots, day.Add(9*time.Hour+30*time.Minute), busy)
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("adjacent booking succeeds", func(t *testing.T) {
		busy := []Window{WindowAt(day.Add(9 * time.Hour))}
		assert.NoError(t, ValidateBooking(slots, day.Add(10*time.Hour), busy))
	})

	t.Run("outside availability", func(t *testing.T) {
		err := ValidateBooking(slots, day.Add(8*time.Hour), nil)
		assert.ErrorIs(t, err, ErrOutsideAvailability)
	})

	t.Run("same start conflicts", func(t *testing.T) {
		busy := []Window{WindowAt(day.Add(9 * time.Hour))}
		err := ValidateBooking(slots, day.Add(9*time.Hour), busy)
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("start at existing end succeeds", func(t *testing.T) {
		// Boundary: a request starting exactly at an existing window's end
		// is not a conflict.
		busy := []Window{{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}}
		assert.NoError(t, ValidateBooking(slots, day.Add(10*time.Hour), busy))
	})

	t.Run("no slots declared", func(t *testing.T) {
		err := ValidateBooking(nil, day.Add(9*time.Hour), nil)
		assert.ErrorIs(t, err, ErrOutsideAvailability)
	})
}

// TestBookingSequenceInvariant books a series of appointments and checks
// after every accepted booking that no two windows for the doctor overlap.
func TestBookingSequenceInvariant(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slots := []Slot{
		mustSlot(t, "09:00-10:00"),
		mustSlot(t, "10:00-11:00"),
		mustSlot(t, "11:00-12:00"),
		mustSlot(t, "14:00-15:00"),
	}

	requests := []time.Duration{
		9 * time.Hour,
		9*time.Hour + 30*time.Minute, // conflict
		10 * time.Hour,
		10 * time.Hour, // conflict
		11*time.Hour + 15*time.Minute,
		14 * time.Hour,
		8 * time.Hour, // outside availability
	}

	var busy []Window
	accepted := 0
	for _, offset := range requests {
		start := day.Add(offset)
		if err := ValidateBooking(slots, start, busy); err != nil {
			continue
		}
		busy = append(busy, WindowAt(start))
		accepted++

		for i := 0; i < len(busy); i++ {
			for j := i + 1; j < len(busy); j++ {
				assert.False(t, busy[i].Overlaps(busy[j]),
					"windows %v and %v overlap", busy[i], busy[j])
			}
		}
	}
	assert.Equal(t, 4, accepted)
}
