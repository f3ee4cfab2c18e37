package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Sentinel values used when a field cannot be extracted.
const (
	DefaultDescription = "Event details from UCF Events Calendar"
	DefaultDate        = "Date TBD"
	DefaultTime        = "Time TBD"
	DefaultLocation    = "UCF Campus"
)

// Event represents a single calendar event scraped from the events page
type Event struct {
	ID          string    `json:"id"` // SHA1 of the normalized title
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Link        string    `json:"link"`
	Image       string    `json:"image"`
	Source      string    `json:"source"` // strategy that produced the record
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Defaults holds the placeholder strings substituted for missing fields.
type Defaults struct {
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
}

// StandardDefaults returns the sentinels used when no deployment overrides them.
func StandardDefaults() Defaults {
	return Defaults{
		Description: DefaultDescription,
		Date:        DefaultDate,
		Time:        DefaultTime,
		Location:    DefaultLocation,
	}
}

// Apply trims every field of evt and fills empty ones with sentinels.
// Link and Image stay empty when absent.
func (d Defaults) Apply(evt *Event) {
	evt.Title = strings.TrimSpace(evt.Title)
	evt.Description = orDefault(evt.Description, d.Description)
	evt.Date = orDefault(evt.Date, d.Date)
	evt.Time = orDefault(evt.Time, d.Time)
	evt.Location = orDefault(evt.Location, d.Location)
	evt.Link = strings.TrimSpace(evt.Link)
	evt.Image = strings.TrimSpace(evt.Image)
	if evt.ID == "" && evt.Title != "" {
		evt.ID = GenerateID(evt.Title)
	}
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// NormalizeTitle returns the comparison key for a title: trimmed and case-folded.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// GenerateID creates a deterministic ID for an event based on its normalized title
func GenerateID(title string) string {
	h := sha1.New()
	h.Write([]byte(NormalizeTitle(title)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Dedupe keeps the first event seen for each normalized title, preserving order.
func Dedupe(events []*Event) []*Event {
	seen := make(map[string]bool, len(events))
	unique := make([]*Event, 0, len(events))
	for _, evt := range events {
		key := NormalizeTitle(evt.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, evt)
	}
	return unique
}
