// Package validate holds the field predicates shared by every form on the
// site. Predicates never panic: missing or malformed input is simply invalid.
package validate

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	whitespace   = regexp.MustCompile(`\s`)
)

// dateLayouts are the shapes a browser date or datetime-local input submits.
var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func Email(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return emailPattern.MatchString(s)
}

func Phone(s string) bool {
	if s == "" {
		return false
	}
	return phonePattern.MatchString(whitespace.ReplaceAllString(s, ""))
}

func Date(s string) bool {
	_, ok := ParseDate(s, time.UTC)
	return ok
}

// ParseDate parses s in loc. Offsets carried by RFC3339 input win over loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age reports whether the person born on dob is between min and max years
// old (inclusive) at now. Birthdays later in the year are not counted yet.
func Age(dob string, min, max int, now time.Time) bool {
	born, ok := ParseDate(dob, now.Location())
	if !ok || born.After(now) {
		return false
	}
	age := YearsBetween(born, now)
	return age >= min && age <= max
}

// YearsBetween returns the number of completed years from born to now.
func YearsBetween(born, now time.Time) int {
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years
}

// FutureOrToday reports whether s falls on or after local midnight of now.
func FutureOrToday(s string, now time.Time) bool {
	d, ok := ParseDate(s, now.Location())
	if !ok {
		return false
	}
	return !d.Before(StartOfDay(now))
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func HeartRate(bpm float64) bool { return between(bpm, 40, 200) }

func BloodOxygen(pct float64) bool { return between(pct, 70, 100) }

func Temperature(celsius float64) bool { return between(celsius, 35, 42) }

func BloodPressure(systolic, diastolic float64) bool {
	return between(systolic, 70, 200) && between(diastolic, 40, 130)
}

// between is false for NaN since every comparison with NaN is false.
func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
