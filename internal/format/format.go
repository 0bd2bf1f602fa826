// Package format renders numbers, dates and durations the way the site
// displays them (en-US conventions).
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DateLayout = "January 2, 2006"
	TimeLayout = "03:04 PM"
	// summaryLayout is the long weekday form used by the booking summary.
	summaryLayout = "Monday, January 2, 2006"

	wordsPerMinute = 200
	frameInterval  = 16 * time.Millisecond

	// CounterDuration is how long the landing page stats take to count up.
	CounterDuration = 2 * time.Second
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Number abbreviates millions ("1.2M"), groups thousands ("8,432") and
// prints smaller values as-is. NaN and infinities render as "0".
func Number(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(n/1_000_000, 'f', 1, 64) + "M"
	case n >= 1000:
		return printer.Sprint(number.Decimal(n, number.MaxFractionDigits(3)))
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Grouped prints an integer with thousands separators.
func Grouped(n int64) string {
	return printer.Sprintf("%d", n)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// SummaryDateTime renders "Monday, January 2, 2006 at <tod>". The time of
// day is passed through as entered.
func SummaryDateTime(day time.Time, tod string) string {
	return fmt.Sprintf("%s at %s", day.Format(summaryLayout), tod)
}

// ReadingTime estimates minutes to read text at 200 words per minute.
func ReadingTime(text string) string {
	words := len(strings.Fields(text))
	if words == 0 {
		// An empty body still splits into one token in the page script.
		words = 1
	}
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	return fmt.Sprintf("%d min read", minutes)
}

// CounterFrames returns the text of each 16ms frame of the landing page's
// count-up animation from 0 to target over duration. The last frame always
// shows target.
func CounterFrames(target float64, duration time.Duration) []string {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return nil
	}
	steps := float64(duration) / float64(frameInterval)
	increment := target / steps
	if steps <= 0 {
		increment = target
	}

	var frames []string
	current := 0.0
	for {
		current += increment
		done := current >= target || increment <= 0
		if done {
			current = target
		}
		frames = append(frames, counterText(current, target))
		if done {
			return frames
		}
	}
}

func counterText(current, target float64) string {
	switch {
	case target >= 1_000_000:
		return strconv.FormatFloat(current/1_000_000, 'f', 1, 64) + "M"
	case target >= 1000:
		return Grouped(int64(math.Floor(current)))
	case target != math.Trunc(target):
		return strconv.FormatFloat(current, 'f', 1, 64)
	}
	return strconv.FormatInt(int64(math.Floor(current)), 10)
}
