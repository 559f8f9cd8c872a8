package utils

import (
	"fmt"
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ParseDate parses YYYY-MM-DD into a UTC calendar date at midnight.
// Timestamps are accepted when the date is followed by a 'T' or a space;
// any other trailing text is rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(layoutDate) {
		if sep := s[len(layoutDate)]; sep != 'T' && sep != ' ' {
			return time.Time{}, fmt.Errorf("invalid date %q", s)
		}
		s = s[:len(layoutDate)]
	}
	return time.ParseInLocation(layoutDate, s, time.UTC)
}

// FormatDate formats time to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// CalendarDay drops the time of day, keeping the date as seen in t's zone.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts calendar-day boundaries from checkin to checkout.
// Missing or unparsable dates and checkout <= checkin all give 0.
func NightsBetween(checkin, checkout string) int {
	in, err := ParseDate(checkin)
	if err != nil {
		return 0
	}
	out, err := ParseDate(checkout)
	if err != nil {
		return 0
	}
	return DaysBetween(in, out)
}

// DaysBetween is NightsBetween for parsed times. Both sides are normalized to
// midnight UTC first so DST shifts cannot produce 23h or 25h days. Day numbers
// come from Unix seconds, which do not saturate like time.Duration.
func DaysBetween(from, to time.Time) int {
	a := CalendarDay(from).Unix() / secondsPerDay
	b := CalendarDay(to).Unix() / secondsPerDay
	if b <= a {
		return 0
	}
	return int(b - a)
}

// DateWithin reports whether date lies in [start, end]. Blank bounds are open.
// An unparsable date is never within a bounded range.
func DateWithin(date, start, end string) bool {
	d, err := ParseDate(date)
	if err != nil {
		return strings.TrimSpace(start) == "" && strings.TrimSpace(end) == ""
	}
	if s, err := ParseDate(start); err == nil && d.Before(s) {
		return false
	}
	if e, err := ParseDate(end); err == nil && d.After(e) {
		return false
	}
	return true
}
