package interpreter

import (
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// priorityAliases maps lowercase priority tokens to canonical uppercase.
var priorityAliases = map[string]string{
	"low":    "LOW",
	"medium": "MEDIUM",
	"high":   "HIGH",
	"urgent": "URGENT",
}

// datePlaceholders are format-string artifacts a model sometimes echoes back
// instead of an actual date. They carry no value and the field is dropped.
var datePlaceholders = map[string]bool{
	"yyyy-mm-dd": true,
	"yyyy/mm/dd": true,
	"mm/dd/yyyy": true,
}

// timePlaceholders are the time-format equivalents.
var timePlaceholders = map[string]bool{
	"hh:mm":    true,
	"hh:mm:ss": true,
}

// namedTimes maps times of day to canonical 24-hour values.
var namedTimes = map[string]string{
	"morning":   "09:00",
	"afternoon": "14:00",
	"evening":   "18:00",
	"night":     "20:00",
	"noon":      "12:00",
	"midnight":  "00:00",
}

var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// Normalize canonicalizes the date, time, and priority fields of a
// descriptor. It is pure and total: invalid or placeholder values are
// dropped (reset to the zero value), never errored, and never passed
// through. Relative dates resolve against now. Normalize is idempotent for
// a fixed now.
func Normalize(d Descriptor, now time.Time) Descriptor {
	if d.Priority != "" {
		if canonical, ok := priorityAliases[strings.ToLower(d.Priority)]; ok {
			d.Priority = canonical
		}
		// Unrecognized priorities pass through; the task service rejects them.
	}

	d.ScheduledDate = normalizeDate(d.ScheduledDate, now)
	d.DueDate = normalizeDate(d.DueDate, now)
	d.DateFilter = normalizeDate(d.DateFilter, now)

	d.ScheduledTime = normalizeTime(d.ScheduledTime)
	d.DueTime = normalizeTime(d.DueTime)

	return d
}

// normalizeDate resolves a raw date token to ISO YYYY-MM-DD, or "" when the
// token is absent, a placeholder, or unparsable.
func normalizeDate(raw string, now time.Time) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("[", "", "]", "").Replace(s)

	if datePlaceholders[s] {
		return ""
	}

	today := now
	switch {
	case s == "today":
		return today.Format(isoDate)
	case s == "tomorrow":
		return today.AddDate(0, 0, 1).Format(isoDate)
	case s == "yesterday":
		return today.AddDate(0, 0, -1).Format(isoDate)
	case strings.Contains(s, "next week"):
		return today.AddDate(0, 0, 7).Format(isoDate)
	case strings.Contains(s, "next month"):
		return today.AddDate(0, 0, 30).Format(isoDate)
	}

	if _, err := time.Parse(isoDate, s); err != nil {
		return ""
	}
	return s
}

// normalizeTime resolves a raw time token to 24-hour HH:MM, or "" when the
// token is absent, a placeholder, or unparsable.
func normalizeTime(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("[", "", "]", "").Replace(s)

	if timePlaceholders[s] {
		return ""
	}

	if canonical, ok := namedTimes[s]; ok {
		return canonical
	}

	if !clockPattern.MatchString(s) {
		return ""
	}
	return s
}
