package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component, carried as YYYY-MM-DD.
type Date string

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp, whose date part is kept as written.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, s); err == nil {
		return Date(s), nil
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date(s[:len(dateLayout)]), nil
	}
	return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) IsZero() bool { return d == "" }

func (d Date) String() string { return string(d) }

// Time returns midnight UTC of d.
func (d Date) Time() (time.Time, error) {
	return time.Parse(dateLayout, string(d))
}

// Display renders DD-MM-YYYY, "-" for an empty date and the raw value when it does not parse.
func (d Date) Display() string {
	if d == "" {
		return "-"
	}
	t, err := d.Time()
	if err != nil {
		return string(d)
	}
	return t.Format("02-01-2006")
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		// Keep what the server sent rather than failing the whole record.
		*d = Date(raw)
		return nil
	}
	*d = parsed
	return nil
}
