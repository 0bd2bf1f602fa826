package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrUnknownKind = errors.New("unknown validator")

// Kinds lists the validators Check accepts, in display order.
var Kinds = []string{
	"email", "phone", "date", "dob", "future",
	"heart_rate", "blood_oxygen", "temperature", "blood_pressure",
}

// Check runs the named validator over raw text input. blood_pressure takes
// either two values or one "120/80" value. A value that is not a number is
// invalid, not an error; errors are reserved for bad kinds or arity.
func Check(kind string, values []string, now time.Time) (bool, error) {
	switch kind {
	case "email", "phone", "date", "dob", "future":
		if len(values) != 1 {
			return false, fmt.Errorf("validate: %s takes one value, got %d", kind, len(values))
		}
		return checkText(kind, values[0], now), nil
	case "heart_rate", "blood_oxygen", "temperature":
		if len(values) != 1 {
			return false, fmt.Errorf("validate: %s takes one value, got %d", kind, len(values))
		}
		v, ok := parseNumber(values[0])
		if !ok {
			return false, nil
		}
		switch kind {
		case "heart_rate":
			return HeartRate(v), nil
		case "blood_oxygen":
			return BloodOxygen(v), nil
		}
		return Temperature(v), nil
	case "blood_pressure":
		if len(values) == 1 {
			values = strings.SplitN(values[0], "/", 2)
		}
		if len(values) != 2 {
			return false, nil
		}
		sys, ok1 := parseNumber(values[0])
		dia, ok2 := parseNumber(values[1])
		return ok1 && ok2 && BloodPressure(sys, dia), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func checkText(kind, s string, now time.Time) bool {
	switch kind {
	case "email":
		return Email(s)
	case "phone":
		return Phone(s)
	case "date":
		return Date(s)
	case "dob":
		return Age(s, 0, 120, now)
	}
	return FutureOrToday(s, now)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
