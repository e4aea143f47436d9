package availability

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// minRemaining is the smallest seat count worth reporting; a single seat
// left sells out before anyone can act on the notification.
const minRemaining = 2

var timeTokenRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

// voidElements never produce an end tag, even when the markup writes them
// as plain start tags; counting them into the row depth would merge
// consecutive rows.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// TimeSlots scans a performance-list page and returns one TimeSlot per
// performance row. The page must have been rendered for targetDate: the
// first data-display-date attribute is compared date-only against it, and
// a mismatch or a rowless page fails with ErrInvalidTimePage.
func TimeSlots(page []byte, targetDate string) ([]TimeSlot, error) {
	z := html.NewTokenizer(bytes.NewReader(page))

	var (
		slots       []TimeSlot
		displayDate string

		rowDepth         int
		current          TimeSlot
		markerSeen       bool
		captureRemaining bool
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			var class, dataDate string
			if hasAttr {
				for {
					key, val, more := z.TagAttr()
					switch string(key) {
					case "class":
						class = string(val)
					case "data-display-date":
						dataDate = string(val)
					}
					if !more {
						break
					}
				}
			}
			if displayDate == "" && dataDate != "" {
				displayDate = dataDate
			}

			classes := strings.Fields(class)
			if rowDepth == 0 {
				if hasClass(classes, "performance-row") && tt == html.StartTagToken {
					rowDepth = 1
					current = TimeSlot{}
					markerSeen = false
					captureRemaining = false
				}
				continue
			}
			if tt == html.StartTagToken && !voidElements[tag] {
				rowDepth++
			}
			if hasClass(classes, "remaining") {
				captureRemaining = true
			}

		case html.TextToken:
			if rowDepth == 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			switch {
			case captureRemaining:
				if n, err := strconv.Atoi(text); err == nil {
					current.Remaining = n
				}
				captureRemaining = false
			case current.Time == "" && timeTokenRe.MatchString(text):
				current.Time = text
			case strings.Contains(text, "Available"):
				markerSeen = true
			}

		case html.EndTagToken:
			if rowDepth == 0 {
				continue
			}
			rowDepth--
			if rowDepth == 0 && current.Time != "" && markerSeen {
				slots = append(slots, current)
			}
		}
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no performance rows captured", ErrInvalidTimePage)
	}
	if !sameDate(displayDate, targetDate) {
		return nil, fmt.Errorf("%w: page is for %q, wanted %q", ErrInvalidTimePage, displayDate, targetDate)
	}
	return slots, nil
}

// AvailableTimes filters slots to those with enough seats left and maps
// them to bare "HH:MM" strings, preserving document order.
func AvailableTimes(slots []TimeSlot) []string {
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Remaining >= minRemaining {
			times = append(times, s.Time)
		}
	}
	return times
}

// sameDate compares only the date part of the two values; the page's
// display date may carry a trailing time component.
func sameDate(got, want string) bool {
	return datePart(got) != "" && datePart(got) == datePart(want)
}

func datePart(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
