// Package duetime contains the pure logic for resolving user-supplied due
// date text into an absolute instant.
package duetime

import (
	"fmt"
	"strings"
	"time"
)

// offsetLayouts are the accepted forms that carry an explicit UTC offset
// (including "Z"). They are interpreted exactly, with or without seconds.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// bareLayouts are the accepted forms that carry no UTC offset. They come from
// datetime-local form inputs and are interpreted in the organization zone.
var bareLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Resolve parses text into an absolute UTC instant.
//
// Text carrying an explicit offset (including "Z") is interpreted exactly.
// A bare date+time is interpreted as wall-clock time in loc. Anything else
// is an error. Resolve does not enforce that the instant is in the future;
// that check belongs to the caller.
func Resolve(text string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	for _, layout := range bareLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized due date %q (expected RFC3339 or YYYY-MM-DDTHH:MM)", s)
}
