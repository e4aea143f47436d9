package availability

import "errors"

var (
	// ErrIncompleteCalendar means a calendar page yielded fewer day cells
	// than a real month renders. That is a broken scrape (usually a still
	// gated response), not zero availability.
	ErrIncompleteCalendar = errors.New("calendar page is incomplete")
	// ErrInvalidTimePage means a performance list carried no rows or was
	// rendered for a different date than requested.
	ErrInvalidTimePage = errors.New("time-slot page is invalid")
)

// Day is one calendar cell: a date string as the site renders it
// (e.g. "01/11/2023") and whether it is bookable.
type Day struct {
	Date      string
	Available bool
}

// TimeSlot is one performance row: a "HH:MM" start time and the remaining
// seat count.
type TimeSlot struct {
	Time      string
	Remaining int
}
