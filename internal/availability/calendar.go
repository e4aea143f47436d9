package availability

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// minDayCells is the fewest day cells a genuinely rendered month calendar
// can contain. Anything below it is a failed scrape.
const minDayCells = 14

// Calendar scans a calendar page for day cells and returns them in
// document order. A cell is a div carrying the "day-number" class and a
// data-date attribute; the "available" class marks it bookable.
func Calendar(page []byte) ([]Day, error) {
	z := html.NewTokenizer(bytes.NewReader(page))

	var days []Day
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "div" || !hasAttr {
			continue
		}

		var date, class string
		for {
			key, val, more := z.TagAttr()
			switch string(key) {
			case "data-date":
				date = string(val)
			case "class":
				class = string(val)
			}
			if !more {
				break
			}
		}

		classes := strings.Fields(class)
		if !hasClass(classes, "day-number") || date == "" {
			continue
		}
		days = append(days, Day{Date: date, Available: hasClass(classes, "available")})
	}

	if len(days) < minDayCells {
		return nil, fmt.Errorf("%w: %d day cells", ErrIncompleteCalendar, len(days))
	}
	return days, nil
}

// AvailableDates filters days down to the bookable dates, preserving
// document order.
func AvailableDates(days []Day) []string {
	dates := make([]string, 0, len(days))
	for _, d := range days {
		if d.Available {
			dates = append(dates, d.Date)
		}
	}
	return dates
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}
