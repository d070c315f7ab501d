package collections

import (
	"strconv"
	"time"
)

// parseDayMonthYear builds a local-calendar timestamp from d/m/y captures.
func parseDayMonthYear(day, month, year string) (time.Time, bool) {
	d, err1 := strconv.Atoi(day)
	m, err2 := strconv.Atoi(month)
	y, err3 := strconv.Atoi(year)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), true
}

// parseAmount combines major and two-digit minor captures into minor units.
// Parsing is all-or-nothing: a bad capture yields no amount rather than a
// partial one.
func parseAmount(major, minor string) (int64, bool) {
	maj, err := strconv.ParseInt(major, 10, 64)
	if err != nil {
		return 0, false
	}
	min, err := strconv.ParseInt(minor, 10, 64)
	if err != nil || min < 0 || min > 99 {
		return 0, false
	}
	if maj < 0 {
		return maj*100 - min, true
	}
	return maj*100 + min, true
}
