package availability

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type rowFixture struct {
	time      string
	remaining int
}

func timeSlotPage(displayDate string, rows ...rowFixture) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><div class="performances" data-display-date=%q>`, displayDate)
	for _, r := range rows {
		fmt.Fprintf(&b,
			`<div class="performance-row"><span class="time">%s</span><span class="status">Available</span><div class="badge"><span class="remaining">%d</span></div></div>`,
			r.time, r.remaining)
	}
	b.WriteString(`</div></body></html>`)
	return []byte(b.String())
}

func TestTimeSlots(t *testing.T) {
	t.Run("captures rows with nested badges", func(t *testing.T) {
		page := timeSlotPage("01/11/2023 00:00",
			rowFixture{"09:00", 5},
			rowFixture{"11:30", 2},
		)
		slots, err := TimeSlots(page, "01/11/2023")
		if err != nil {
			t.Fatalf("timeslots error: %v", err)
		}
		want := []TimeSlot{{"09:00", 5}, {"11:30", 2}}
		if diff := cmp.Diff(want, slots); diff != "" {
			t.Errorf("slots mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("void elements do not merge adjacent rows", func(t *testing.T) {
		page := []byte(`<html><body><div data-display-date="01/11/2023">` +
			`<div class="performance-row"><img src="clock.png"><span>09:00</span><span>Available</span><span class="remaining">4</span></div>` +
			`<div class="performance-row"><img src="clock.png"><br><span>11:30</span><span>Available</span><span class="remaining">3</span></div>` +
			`</div></body></html>`)
		slots, err := TimeSlots(page, "01/11/2023")
		if err != nil {
			t.Fatalf("timeslots error: %v", err)
		}
		want := []TimeSlot{{"09:00", 4}, {"11:30", 3}}
		if diff := cmp.Diff(want, slots); diff != "" {
			t.Errorf("slots mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("remaining filter boundary", func(t *testing.T) {
		page := timeSlotPage("01/11/2023",
			rowFixture{"09:00", 1},
			rowFixture{"10:00", 2},
		)
		slots, err := TimeSlots(page, "01/11/2023")
		if err != nil {
			t.Fatalf("timeslots error: %v", err)
		}
		got := AvailableTimes(slots)
		want := []string{"10:00"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("times mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("display date mismatch fails even with rows", func(t *testing.T) {
		page := timeSlotPage("02/11/2023", rowFixture{"09:00", 5})
		_, err := TimeSlots(page, "01/11/2023")
		if !errors.Is(err, ErrInvalidTimePage) {
			t.Fatalf("expected ErrInvalidTimePage, got %v", err)
		}
	})

	t.Run("no rows fails", func(t *testing.T) {
		page := timeSlotPage("01/11/2023")
		_, err := TimeSlots(page, "01/11/2023")
		if !errors.Is(err, ErrInvalidTimePage) {
			t.Fatalf("expected ErrInvalidTimePage, got %v", err)
		}
	})

	t.Run("row without Available marker is skipped", func(t *testing.T) {
		page := []byte(`<html><body><div data-display-date="01/11/2023">` +
			`<div class="performance-row"><span>09:00</span><span>Sold out</span><span class="remaining">0</span></div>` +
			`<div class="performance-row"><span>10:00</span><span>Available</span><span class="remaining">4</span></div>` +
			`</div></body></html>`)
		slots, err := TimeSlots(page, "01/11/2023")
		if err != nil {
			t.Fatalf("timeslots error: %v", err)
		}
		if len(slots) != 1 || slots[0].Time != "10:00" {
			t.Errorf("slots = %+v, want only 10:00", slots)
		}
	})
}
