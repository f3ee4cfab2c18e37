package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LongDateLayout renders a calendar day as "November 03, 2025".
const LongDateLayout = "January 02, 2006"

// FormatLongDate reformats an ISO "2006-01-02" day as a long month/day/year label.
// The second return value is false when isoDay cannot be parsed.
func FormatLongDate(isoDay string) (string, bool) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(isoDay))
	if err != nil {
		return "", false
	}
	return t.Format(LongDateLayout), true
}

var dateLayouts = []string{
	"January 02, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
}

var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"Jan. 2",
	"Monday, January 2",
	"Monday, Jan 2",
	"Mon, Jan 2",
}

// ParseDate converts a date label into a calendar day in now's location.
// Relative labels ("Today", "Tomorrow") resolve against now and labels without a
// year assume now's year. Returns time.Time{} if the label cannot be parsed.
func ParseDate(label string, now time.Time) time.Time {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}
	}

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}

	switch strings.ToLower(label) {
	case "today":
		return day(now.Year(), now.Month(), now.Day())
	case "tomorrow":
		t := now.AddDate(0, 0, 1)
		return day(t.Year(), t.Month(), t.Day())
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return day(t.Year(), t.Month(), t.Day())
		}
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return day(now.Year(), t.Month(), t.Day())
		}
	}

	return time.Time{}
}

var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([ap])?\.?(m)?\.?`)

// ParseClock extracts the start hour and minute from a time label such as
// "6:00 PM", "18:00", "7 pm" or "10:00 AM - 2:00 PM".
func ParseClock(label string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, 0, false
	}
	// A bare number without minutes or meridiem is not a clock time.
	if m[2] == "" && m[3] == "" {
		return 0, 0, false
	}

	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch strings.ToLower(m[3]) {
	case "a":
		if hour == 12 {
			hour = 0
		}
	case "p":
		if hour < 12 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
