package view

import (
	"regexp"
	"strings"
	"time"
)

// alwaysOpenHints mark a deadline as permanently open regardless of dates.
var alwaysOpenHints = []string{"rolling", "ongoing", "open"}

// deadlineFormats covers the date shapes the extraction backend emits.
// Free-text deadlines frequently carry prefixes ("Deadline: 31 March 2026"),
// so regex extraction backs up the exact-format attempts.
var deadlineFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 January 2006",
	"2 Jan 2006",
}

var (
	isoDatePattern   = regexp.MustCompile(`\b(20\d{2})-(\d{2})-(\d{2})\b`)
	monthDatePattern = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2}),?\s+(20\d{2})\b`)
	dayFirstPattern  = regexp.MustCompile(`\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(20\d{2})\b`)
)

// ParseDeadline extracts a calendar date from free-text deadline copy.
// Date-only values resolve to end of day UTC so a deadline stays open for
// its whole final day.
func ParseDeadline(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, format := range deadlineFormats {
		if t, err := time.Parse(format, text); err == nil {
			if strings.Contains(format, ":") {
				return t, true
			}
			return toEndOfDay(t), true
		}
	}

	if m := isoDatePattern.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return toEndOfDay(t), true
		}
	}
	if m := monthDatePattern.FindStringSubmatch(text); len(m) == 4 {
		candidate := m[1] + " " + m[2] + ", " + m[3]
		for _, format := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if t, err := time.Parse(format, candidate); err == nil {
				return toEndOfDay(t), true
			}
		}
	}
	if m := dayFirstPattern.FindStringSubmatch(text); len(m) == 4 {
		candidate := m[1] + " " + m[2] + " " + m[3]
		for _, format := range []string{"2 January 2006", "2 Jan 2006"} {
			if t, err := time.Parse(format, candidate); err == nil {
				return toEndOfDay(t), true
			}
		}
	}

	return time.Time{}, false
}

// DeadlineOpen reports whether a deadline is still actionable at now: either
// qualitative always-open copy ("rolling", "ongoing", "open"), or a parseable
// date at or after now. Empty and unparseable deadlines are not open.
func DeadlineOpen(text string, now time.Time) bool {
	lower := strings.ToLower(text)
	for _, hint := range alwaysOpenHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	if t, ok := ParseDeadline(text); ok {
		return !t.Before(now)
	}
	return false
}

// toEndOfDay sets the time to 23:59:59 UTC.
func toEndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
