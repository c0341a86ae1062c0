// Package scheduling implements the appointment availability and
// booking-conflict model: recurring per-doctor time slots, concrete
// 1-hour booking windows, and the reconciliation of declared
// availability against existing bookings.
package scheduling

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SlotDuration is the fixed length of every booking window.
const SlotDuration = time.Hour

// slotTimeLayout is the wire format for each half of a slot string.
const slotTimeLayout = "15:04"

var (
	// ErrInvalidSlot is returned when a slot string does not parse as
	// "HH:MM-HH:MM" with end after start.
	ErrInvalidSlot = errors.New("invalid slot format, use HH:MM-HH:MM")

	// ErrOutsideAvailability is returned when a requested start time does
	// not fall inside any declared slot.
	ErrOutsideAvailability = errors.New("requested time is outside the doctor's availability")

	// ErrSlotConflict is returned when a requested booking window overlaps
	// an existing non-cancelled appointment.
	ErrSlotConflict = errors.New("requested time conflicts with an existing appointment")
)

// Slot is a recurring time-of-day interval during which a doctor accepts
// appointments, e.g. "09:00-10:00". Start and End are offsets from
// midnight; the interval is half-open [Start, End).
type Slot struct {
	Start time.Duration
	End   time.Duration
}

// ParseSlot parses a slot string of the form "HH:MM-HH:MM". Whitespace
// around either half is tolerated. The end must be after the start, so
// slots never cross midnight.
func ParseSlot(s string) (Slot, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}

	start, err := parseTimeOfDay(strings.TrimSpace(parts[0]))
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	end, err := parseTimeOfDay(strings.TrimSpace(parts[1]))
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	if end <= start {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}

	return Slot{Start: start, End: end}, nil
}

func parseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse(slotTimeLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// String renders the slot back into its "HH:MM-HH:MM" wire form.
func (s Slot) String() string {
	return fmt.Sprintf("%s-%s", formatTimeOfDay(s.Start), formatTimeOfDay(s.End))
}

func formatTimeOfDay(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// Contains reports whether t's time-of-day falls inside the slot.
// The interval is half-open: a time equal to End is outside.
func (s Slot) Contains(t time.Time) bool {
	d := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return d >= s.Start && d < s.End
}

// WindowOn returns the concrete booking window the slot occupies on the
// given day: [day+Start, day+Start+SlotDuration). The window length is
// fixed at SlotDuration regardless of the declared slot end.
func (s Slot) WindowOn(day time.Time) Window {
	start := DayStart(day).Add(s.Start)
	return Window{Start: start, End: start.Add(SlotDuration)}
}

// Window is a concrete half-open interval [Start, End) occupied by a
// booking or candidate booking.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowAt returns the booking window beginning at start.
func WindowAt(start time.Time) Window {
	return Window{Start: start, End: start.Add(SlotDuration)}
}

// Overlaps reports whether two half-open windows intersect. Exact
// boundary touches, one ending when the other begins, do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FreeSlots reconciles a doctor's declared slots with the booking windows
// already taken on the given day. A slot is emitted as free when its
// window overlaps neither a busy window nor a previously emitted slot, so
// the result is ordered by start time and mutually non-overlapping.
func FreeSlots(slots []Slot, day time.Time, busy []Window) []Slot {
	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	free := make([]Slot, 0, len(ordered))
	var lastEmitted Window
	for _, slot := range ordered {
		w := slot.WindowOn(day)
		if len(free) > 0 && w.Overlaps(lastEmitted) {
			continue
		}
		taken := false
		for _, b := range busy {
			if w.Overlaps(b) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		free = append(free, slot)
		lastEmitted = w
	}
	return free
}

// ValidateBooking decides whether a booking starting at start may be
// created given the doctor's declared slots and the busy windows of
// existing non-cancelled appointments. It returns ErrOutsideAvailability
// when no declared slot contains the start, and ErrSlotConflict when the
// booking window [start, start+SlotDuration) overlaps a busy window.
func ValidateBooking(slots []Slot, start time.Time, busy []Window) error {
	inside := false
	for _, slot := range slots {
		if slot.Contains(start) {
			inside = true
			break
		}
	}
	if !inside {
		return ErrOutsideAvailability
	}

	w := WindowAt(start)
	for _, b := range busy {
		if w.Overlaps(b) {
			return ErrSlotConflict
		}
	}
	return nil
}
