package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ErrInvalidHours is returned by ParseHours for non-numeric or negative input.
type ErrInvalidHours struct {
	Input string
}

func (e *ErrInvalidHours) Error() string {
	return fmt.Sprintf("hours must be a non-negative number, got %q", e.Input)
}

// ParseHours parses a user-entered hours value. Whitespace is trimmed and an
// empty string parses to 0, which callers treat as "clear the cell". Values
// are rounded to the nearest quarter hour.
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ErrInvalidHours{Input: s}
	}
	if v < 0 {
		return 0, &ErrInvalidHours{Input: s}
	}
	return RoundQuarter(v), nil
}

// RoundQuarter rounds hours to the nearest quarter hour.
func RoundQuarter(v float64) float64 {
	return math.Round(v*4) / 4
}

// HoursEqual compares two hours values after quarter-hour normalization, so
// "5" and "5.0" count as the same value.
func HoursEqual(a, b float64) bool {
	return RoundQuarter(a) == RoundQuarter(b)
}

// FormatHours renders an hours value the way the grid displays it: no
// trailing zeros, empty string for zero.
func FormatHours(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WeekStart returns the Monday of the week containing t, at midnight UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
