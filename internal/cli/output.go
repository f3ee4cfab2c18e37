package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/campus-events/internal/calendar"
	"github.com/pfrederiksen/campus-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatText, FormatJSON, FormatICS:
		return format, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", s)
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt   time.Time      `json:"checked_at"`
	CachedOn    string         `json:"cached_on"`
	CachedAt    time.Time      `json:"cached_at"`
	CacheStatus string         `json:"cache_status"`
	Fallback    bool           `json:"fallback"`
	Events      []*event.Event `json:"events"`
	EventCount  int            `json:"event_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		return writeICS(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeICS(w io.Writer, result *OutputResult) error {
	snap := &event.Snapshot{CachedOn: result.CachedOn, CachedAt: result.CachedAt}
	_, err := io.WriteString(w, calendar.GenerateICS(result.Events, snap.Day(), result.CheckedAt))
	return err
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for _, evt := range result.Events {
		fmt.Fprintf(w, "%s\n", evt.Title)
		fmt.Fprintf(w, "  %s | %s | %s\n", evt.Date, evt.Time, evt.Location)
		if verbose {
			fmt.Fprintf(w, "     ID: %s\n", evt.ID)
			fmt.Fprintf(w, "     Source: %s\n", evt.Source)
			if evt.Link != "" {
				fmt.Fprintf(w, "     Link: %s\n", evt.Link)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events (cached on %s", result.EventCount, result.CachedOn)
	if result.Fallback {
		fmt.Fprint(w, ", fallback list")
	}
	fmt.Fprintln(w, ")")
	return nil
}
