// Package dates normalizes the small vocabulary of spoken date phrases the
// assistant understands into calendar dates.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the wire format for due dates.
const ISODate = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// e.g. "december 15", "december 15th", "march 3rd"
var monthDayPattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(st|nd|rd|th)?\b`)

// Resolve scans a transcript for a date phrase and returns the normalized
// YYYY-MM-DD date relative to now. The second return is false when no phrase
// is recognized.
//
// Weekday names resolve to the nearest upcoming occurrence; when today IS
// that weekday, the phrase resolves to next week's occurrence (saying
// "by Friday" on a Friday is taken to mean the next one).
func Resolve(transcript string, now time.Time) (string, bool) {
	text := strings.ToLower(transcript)

	if containsWord(text, "today") {
		return now.Format(ISODate), true
	}
	if containsWord(text, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(ISODate), true
	}
	if strings.Contains(text, "next week") {
		return now.AddDate(0, 0, 7).Format(ISODate), true
	}
	if strings.Contains(text, "next month") {
		return now.AddDate(0, 1, 0).Format(ISODate), true
	}

	for name, day := range weekdays {
		if !containsWord(text, name) {
			continue
		}
		delta := (int(day) - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return now.AddDate(0, 0, delta).Format(ISODate), true
	}

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		month := months[m[1]]
		dayNum, err := strconv.Atoi(m[2])
		if err == nil && dayNum >= 1 && dayNum <= 31 {
			candidate := time.Date(now.Year(), month, dayNum, 0, 0, 0, 0, now.Location())
			// A past month/day means next year's occurrence.
			if candidate.Before(now.Truncate(24 * time.Hour)) {
				candidate = candidate.AddDate(1, 0, 0)
			}
			return candidate.Format(ISODate), true
		}
	}

	return "", false
}

// HasDatePhrase reports whether the transcript contains any recognizable
// date phrase. Used to decide task finalization.
func HasDatePhrase(transcript string, now time.Time) bool {
	_, ok := Resolve(transcript, now)
	return ok
}

func containsWord(text, word string) bool {
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		if w == word {
			return true
		}
	}
	return false
}
