// Package calendar renders cached campus events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// defaultDuration is used when an event's time label has no end.
const defaultDuration = time.Hour

// maxLineOctets is the RFC 5545 content line limit.
const maxLineOctets = 75

// GenerateICS generates an iCalendar (.ics) feed with one VEVENT per event.
// Dates that cannot be parsed fall back to day; events without a parseable
// time become all-day entries. now stamps DTSTAMP.
func GenerateICS(events []*event.Event, day, now time.Time) string {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:-//Campus Events//campus-events//EN")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "X-WR-CALNAME:UCF Events")

	for _, evt := range events {
		writeEvent(&ics, evt, day, now)
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, day, now time.Time) {
	writeLine(ics, "BEGIN:VEVENT")

	// UID - stable across refreshes since the ID derives from the title
	writeLine(ics, fmt.Sprintf("UID:%s@events.ucf.edu", evt.ID))
	writeLine(ics, fmt.Sprintf("DTSTAMP:%s", formatICSTime(now)))

	date := event.ParseDate(evt.Date, day)
	if date.IsZero() {
		date = day
	}

	start, end, timed := timeRange(evt.Time, date)
	if timed {
		writeLine(ics, fmt.Sprintf("DTSTART:%s", formatICSTime(start)))
		writeLine(ics, fmt.Sprintf("DTEND:%s", formatICSTime(end)))
	} else {
		writeLine(ics, fmt.Sprintf("DTSTART;VALUE=DATE:%s", date.Format("20060102")))
		writeLine(ics, fmt.Sprintf("DTEND;VALUE=DATE:%s", date.AddDate(0, 0, 1).Format("20060102")))
	}

	writeLine(ics, "SUMMARY:"+escapeICS(evt.Title))
	if evt.Description != "" {
		writeLine(ics, "DESCRIPTION:"+escapeICS(evt.Description))
	}
	if evt.Location != "" {
		writeLine(ics, "LOCATION:"+escapeICS(evt.Location))
	}
	if evt.Link != "" {
		writeLine(ics, "URL:"+evt.Link)
	}

	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "TRANSP:OPAQUE")
	writeLine(ics, "END:VEVENT")
}

// timeRange parses labels such as "6:00 PM", "18:00" or "10:00 AM - 2:00 PM"
// on date. An end that fails to parse or precedes the start is replaced by
// start plus defaultDuration.
func timeRange(label string, date time.Time) (start, end time.Time, ok bool) {
	from, to, hasEnd := strings.Cut(label, "-")
	hour, minute, ok := event.ParseClock(strings.TrimSpace(from))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start = time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
	end = start.Add(defaultDuration)

	if hasEnd {
		if h, m, ok := event.ParseClock(strings.TrimSpace(to)); ok {
			candidate := time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
			if candidate.After(start) {
				end = candidate
			}
		}
	}
	return start, end, true
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes one content line, folding it at maxLineOctets without
// splitting a UTF-8 sequence.
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines carry a leading space.
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
