package booking

import (
	"context"

	"github.com/venusseo127/dentalApp/types"
)

// DefaultSlots are the appointment start times offered every day.
var DefaultSlots = []string{"09:00", "10:30", "14:00", "15:30", "16:30"}

// SlotProvider returns candidate start times for a dentist on a date.
type SlotProvider interface {
	Slots(ctx context.Context, dentistID, date string) ([]string, error)
}

// FixedSlots offers the same list for every dentist and date.
type FixedSlots []string

func (f FixedSlots) Slots(context.Context, string, string) ([]string, error) {
	out := make([]string, len(f))
	copy(out, f)
	return out, nil
}

// AvailabilityLister lists availability windows of a dentist on a date.
type AvailabilityLister interface {
	List(ctx context.Context, dentistID, date string) ([]types.Availability, error)
}

// AvailabilitySlots narrows Base to the windows recorded for the dentist.
// A dentist without any window on the date is offered the full list.
type AvailabilitySlots struct {
	Base         []string
	Availability AvailabilityLister
}

func (a AvailabilitySlots) Slots(ctx context.Context, dentistID, date string) ([]string, error) {
	base := a.Base
	if len(base) == 0 {
		base = DefaultSlots
	}
	windows, err := a.Availability.List(ctx, dentistID, date)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return FixedSlots(base).Slots(ctx, dentistID, date)
	}

	slots := make([]string, 0, len(base))
	for _, slot := range base {
		if withinAvailable(slot, windows) {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// withinAvailable reports whether slot starts inside an open window and no
// blocked window covers it.
func withinAvailable(slot string, windows []types.Availability) bool {
	open := false
	for _, window := range windows {
		if slot < window.StartTime || slot >= window.EndTime {
			continue
		}
		if !window.IsAvailable {
			return false
		}
		open = true
	}
	return open
}
