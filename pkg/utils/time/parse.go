// ABOUTME: Lenient timestamp parsing for courier scan dates
// ABOUTME: Tries ISO and day-first layouts in order and reports whether one matched

package time

import (
	"strings"
	"time"
)

// Layouts are tried in order; the first one that parses wins
var Layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02",
}

// Parse parses value with the first matching layout. Values without a zone
// are read as UTC.
func Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
