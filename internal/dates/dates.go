// Package dates parses API publication timestamps and formats them for display.
package dates

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// Layout is the timestamp layout the content API sends, with a numeric offset.
	Layout = "2006-01-02T15:04:05-0700"

	// DisplayLayout renders dates as "Jan 05, 2024".
	DisplayLayout = "Jan 02, 2006"
)

// Date is a publication date that may be absent.
type Date struct {
	Time  time.Time
	Valid bool
}

// Of wraps a known point in time.
func Of(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// Parse converts a timestamp such as "2023-07-01T12:00:00Z" into a UTC Date.
// The trailing UTC designator is read as a +0000 offset. Any failure yields an
// absent Date.
func Parse(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}

	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+0000"
	}

	t, err := time.Parse(Layout, s)
	if err != nil {
		// Offsets written as +hh:mm.
		t, err = time.Parse("2006-01-02T15:04:05-07:00", s)
		if err != nil {
			return Date{}
		}
	}

	return Of(t.UTC())
}

// Format renders t as "MMM dd, yyyy".
func Format(t time.Time) string {
	return t.Format(DisplayLayout)
}

// Display formats the date, or returns fallback when it is absent.
func (d Date) Display(fallback string) string {
	if !d.Valid {
		return fallback
	}

	return Format(d.Time)
}

// String implements fmt.Stringer.
func (d Date) String() string {
	return d.Display("unknown")
}

// MarshalJSON encodes an absent date as null and a known one as RFC 3339.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}

	return json.Marshal(d.Time.Format(time.RFC3339))
}
