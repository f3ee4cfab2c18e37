package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone     SortOrder = "none"
	SortByDate   SortOrder = "date"
	SortByTitle  SortOrder = "title"
	SortLocation SortOrder = "location"
)

// ParseSortOrder validates a sort order name. Empty means SortNone.
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case "":
		return SortNone, nil
	case SortNone, SortByDate, SortByTitle, SortLocation:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'none', 'date', 'title' or 'location')", s)
}

// sortedEvents returns a sorted copy of events. Relative date labels resolve
// against day. The input slice is shared with the cache and left untouched.
func sortedEvents(events []*event.Event, order SortOrder, day time.Time) []*event.Event {
	sorted := append([]*event.Event(nil), events...)

	switch order {
	case SortByDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareByDate(sorted[i], sorted[j], day)
		})
	case SortByTitle:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
		})
	case SortLocation:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Location != sorted[j].Location {
				return strings.ToLower(sorted[i].Location) < strings.ToLower(sorted[j].Location)
			}
			// If locations are equal, sort by date
			return compareByDate(sorted[i], sorted[j], day)
		})
	}
	return sorted
}

// compareByDate compares two events by their date, then start time.
// Returns true if event i should come before event j
func compareByDate(i, j *event.Event, day time.Time) bool {
	dateI := event.ParseDate(i.Date, day)
	dateJ := event.ParseDate(j.Date, day)

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() {
		if !dateI.Equal(dateJ) {
			return dateI.Before(dateJ)
		}
		return minuteOfDay(i.Time) < minuteOfDay(j.Time)
	}

	// If only one date is valid, put the valid one first
	if !dateI.IsZero() {
		return true
	}
	if !dateJ.IsZero() {
		return false
	}

	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}

// minuteOfDay places events without a parseable time at the end of the day.
func minuteOfDay(label string) int {
	hour, minute, ok := event.ParseClock(label)
	if !ok {
		return 24 * 60
	}
	return hour*60 + minute
}
