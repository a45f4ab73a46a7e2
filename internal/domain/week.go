package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var weekPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// WeekOf returns the ISO-8601 week identifier (YYYY-Www) containing t.
// The week is evaluated in UTC so every process agrees on the boundary.
func WeekOf(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeek validates an operator supplied week identifier
func ParseWeek(s string) (string, error) {
	m := weekPattern.FindStringSubmatch(s)
	if m == nil {
		return "", ValidationError{Field: "week", Reason: fmt.Sprintf("%q is not in YYYY-Www form", s)}
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > weeksInYear(year) {
		return "", ValidationError{Field: "week", Reason: fmt.Sprintf("%s has no week %d", m[1], week)}
	}
	return s, nil
}

// weeksInYear returns 52 or 53. Dec 28 always falls in the last ISO week.
func weeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
