package timeutil

import (
	"fmt"
	"time"
)

// Strict wire formats used everywhere a date or time crosses the API boundary.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// TimeToMinutes converts a strict "HH:MM" string to minutes since midnight.
func TimeToMinutes(s string) (int, error) {
	if !IsValidTimeFormat(s) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m, nil
}

// MinutesToTime formats minutes since midnight as "HH:MM".
func MinutesToTime(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// IsValidTimeFormat reports whether s is a strict 24h "HH:MM" string.
func IsValidTimeFormat(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h <= 23 && m <= 59
}

// IsValidDateFormat reports whether s is a strict "YYYY-MM-DD" calendar date.
// It rejects dates that normalize (2026-02-30 parses but comes back different).
func IsValidDateFormat(s string) bool {
	if len(s) != 10 {
		return false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(DateLayout) == s
}

// DayOfWeekFromDate returns 0 (Sunday) through 6 (Saturday) for a
// "YYYY-MM-DD" string, or -1 when the string is not a valid date.
// Callers must treat -1 as a validation failure, never as a weekday.
func DayOfWeekFromDate(dateStr string) int {
	if !IsValidDateFormat(dateStr) {
		return -1
	}
	t, _ := time.Parse(DateLayout, dateStr)
	return int(t.Weekday())
}
