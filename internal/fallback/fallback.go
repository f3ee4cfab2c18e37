// Package fallback supplies the fixed event list served when scraping yields nothing.
package fallback

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// Source labels every fallback record.
const Source = "fallback"

// linkBase numbers the fallback event links.
const linkBase = 4000

type template struct {
	title, description, time, location string
}

var templates = []template{
	{
		title:       "UCF Student Organization Fair",
		description: "Discover clubs, societies and ways to get involved on campus at the annual student organization fair.",
		time:        "10:00 AM - 2:00 PM",
		location:    "Student Union",
	},
	{
		title:       "Career Services Workshop: Resume Building",
		description: "Build your resume, prepare for interviews and network with professionals in your field.",
		time:        "3:00 PM - 4:30 PM",
		location:    "Career Services Center",
	},
	{
		title:       "UCF Basketball Game vs Rival Team",
		description: "Cheer on the Knights as they take on their biggest rival.",
		time:        "7:00 PM - 9:30 PM",
		location:    "Addition Financial Arena",
	},
	{
		title:       "Research Symposium: Innovation in Technology",
		description: "Explore current research in technology, artificial intelligence and engineering.",
		time:        "9:00 AM - 5:00 PM",
		location:    "Engineering Building",
	},
	{
		title:       "Cultural Diversity Festival",
		description: "Celebrate the diversity of UCF with food, music, dance and cultural performances.",
		time:        "11:00 AM - 6:00 PM",
		location:    "Memory Mall",
	},
}

// Provider builds the fallback list for one site.
type Provider struct {
	BaseURL   string
	DateLabel string
}

// New creates a Provider. An empty dateLabel uses event.DefaultDate.
func New(baseURL, dateLabel string) *Provider {
	if dateLabel == "" {
		dateLabel = event.DefaultDate
	}
	return &Provider{BaseURL: strings.TrimRight(baseURL, "/"), DateLabel: dateLabel}
}

// Events returns the fallback list stamped with at. The titles, order and
// links never change between calls.
func (p *Provider) Events(at time.Time) []*event.Event {
	events := make([]*event.Event, 0, len(templates))
	for i, tmpl := range templates {
		events = append(events, &event.Event{
			ID:          event.GenerateID(tmpl.title),
			Title:       tmpl.title,
			Description: tmpl.description,
			Date:        p.DateLabel,
			Time:        tmpl.time,
			Location:    tmpl.location,
			Link:        fmt.Sprintf("%s/event/%d", p.BaseURL, linkBase+i),
			Source:      Source,
			ScrapedAt:   at,
		})
	}
	return events
}
