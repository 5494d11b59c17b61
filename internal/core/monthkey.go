// Month-year keys ("yyyy-MM") scope budgets and month-level reports.
// All month-range math lives here so every caller gets the same
// inclusive bounds.
package core

import (
	"fmt"
	"time"
)

const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "15:04"
	MonthKeyFormat = "2006-01"
	DisplayDate    = "Jan 02, 2006"
	DisplayTime    = "03:04 PM"
	DisplayMonth   = "January 2006"
)

// MonthKey formats a year and month as a "yyyy-MM" key.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// MonthKeyOf returns the key for the month containing t.
func MonthKeyOf(t time.Time) string {
	return MonthKey(t.Year(), t.Month())
}

// CurrentMonthKey returns the key for the current local month.
func CurrentMonthKey() string {
	return MonthKeyOf(time.Now())
}

// ParseMonthKey splits a "yyyy-MM" key into year and month. Year
// aggregations key on the 4-digit prefix, so the format is strict.
func ParseMonthKey(key string) (int, time.Month, error) {
	t, err := time.ParseInLocation(MonthKeyFormat, key, time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return t.Year(), t.Month(), nil
}

// ShiftMonthKey returns the key delta months away from key.
func ShiftMonthKey(key string, delta int) (string, error) {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).AddDate(0, delta, 0)
	return MonthKeyOf(t), nil
}

// MonthRange returns the inclusive bounds of a month: the first
// calendar day at 00:00:00.000 and the last at 23:59:59.999 local
// time. Both ends are inclusive; reports depend on these exact
// instants so day-resolution expenses on the boundary days are never
// excluded.
func MonthRange(key string) (start, end time.Time, err error) {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end = start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end, nil
}

// FormatMonthKeyDisplay renders a key as e.g. "March 2024". Malformed
// keys come back unchanged rather than failing a render.
func FormatMonthKeyDisplay(key string) string {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format(DisplayMonth)
}

// FormatTimeDisplay converts an "HH:mm" string to "hh:mm AM/PM",
// falling back to the input when it is not a parseable clock value.
func FormatTimeDisplay(clock string) string {
	t, err := time.Parse(TimeFormat, clock)
	if err != nil {
		return clock
	}
	return t.Format(DisplayTime)
}
