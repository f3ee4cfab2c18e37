package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/extract"
)

var (
	todaysEventsMarker = regexp.MustCompile(`(?i)\btoday(?:['’]?s)?\s+events\b`)
	cardClass          = regexp.MustCompile(`(?i)event|card|item|listing`)
	broadClass         = regexp.MustCompile(`(?i)event|card|item|listing|calendar`)
)

const (
	markerSelector = "h1, h2, h3, h4, h5, h6, section, div, span, p, strong"
	// cardSelector limits candidates to block containers; classed headings
	// and spans inside a card are its fields, not events of their own.
	cardSelector = "div[class], article[class], li[class], section[class]"
	// maxMarkerLength keeps the marker search on headings and labels rather
	// than on containers that merely include the phrase.
	maxMarkerLength = 60
)

// section reads event cards from the container holding a "Today's Events" heading.
type section struct {
	x *extract.Extractor
}

func (s *section) Name() string { return StrategySection }

func (s *section) Extract(doc *goquery.Document) ([]*event.Event, error) {
	// The innermost matching element wins: a short wrapper and the heading
	// inside it both match, and only the heading's parent is the listing.
	var marker *goquery.Selection
	doc.Find(markerSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if marker != nil && !marker.Contains(sel.Get(0)) {
			return false
		}
		text := extract.CleanText(sel.Text())
		if len(text) <= maxMarkerLength && todaysEventsMarker.MatchString(text) {
			marker = sel
		}
		return true
	})
	if marker == nil {
		return nil, nil
	}

	container := marker.Parent()
	if container.Length() == 0 {
		container = marker
	}
	return fragments(s.x, cards(container.Find(cardSelector).FilterFunction(classMatches(cardClass)))), nil
}

// classPattern reads every element whose class name suggests an event listing.
type classPattern struct {
	x *extract.Extractor
}

func (s *classPattern) Name() string { return StrategyClassPattern }

func (s *classPattern) Extract(doc *goquery.Document) ([]*event.Event, error) {
	return fragments(s.x, cards(doc.Find("body").Find(cardSelector).FilterFunction(classMatches(broadClass)))), nil
}

func classMatches(re *regexp.Regexp) func(int, *goquery.Selection) bool {
	return func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		return re.MatchString(class)
	}
}

// cards narrows candidates to one element per event. A candidate holding two
// or more candidates with the same class is a listing and gives way to them;
// a candidate inside a kept card belongs to that card.
func cards(candidates *goquery.Selection) *goquery.Selection {
	kept := candidates.FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return !isListing(sel, candidates)
	})
	return kept.FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Parents().Intersection(kept).Length() == 0
	})
}

func isListing(sel, candidates *goquery.Selection) bool {
	seen := make(map[string]bool)
	listing := false
	candidates.EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if !sel.Contains(c.Get(0)) {
			return true
		}
		class, _ := c.Attr("class")
		key := strings.Join(strings.Fields(class), " ")
		if seen[key] {
			listing = true
			return false
		}
		seen[key] = true
		return true
	})
	return listing
}

// fragments runs the field extractors on each element, keeping those with an
// acceptable title.
func fragments(x *extract.Extractor, sel *goquery.Selection) []*event.Event {
	var events []*event.Event
	sel.Each(func(_ int, item *goquery.Selection) {
		if evt, ok := x.Fragment(item); ok {
			events = append(events, evt)
		}
	})
	return events
}

// attributes reads events straight from data-* attributes.
type attributes struct {
	x *extract.Extractor
}

const attributeSelector = `[data-event-title], [data-event-id], [data-event-date], [data-event], ` +
	`[data-testid*="event"], [data-title][data-date]`

func (s *attributes) Name() string { return StrategyAttributes }

func (s *attributes) Extract(doc *goquery.Document) ([]*event.Event, error) {
	var events []*event.Event
	defaults := s.x.Defaults()

	doc.Find(attributeSelector).Each(func(_ int, sel *goquery.Selection) {
		title := extract.CleanText(dataAttr(sel, "title"))
		if title == "" {
			return
		}

		evt := &event.Event{
			Title:       title,
			Description: orDefault(dataAttr(sel, "description"), defaults.Description),
			Date:        defaults.Date,
			Time:        orDefault(dataAttr(sel, "time"), defaults.Time),
			Location:    orDefault(dataAttr(sel, "location"), defaults.Location),
			Link:        s.x.ResolveURL(orDefault(dataAttr(sel, "url"), attr(sel, "href"))),
			Image:       s.x.ResolveURL(dataAttr(sel, "image")),
		}
		if date, clock := splitStartDate(dataAttr(sel, "date")); date != "" {
			evt.Date = date
			if clock != "" && evt.Time == defaults.Time {
				evt.Time = clock
			}
		}
		events = append(events, evt)
	})

	return events, nil
}

// dataAttr reads data-event-<name>, falling back to data-<name>.
func dataAttr(sel *goquery.Selection, name string) string {
	if v, ok := sel.Attr("data-event-" + name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	v, _ := sel.Attr("data-" + name)
	return strings.TrimSpace(v)
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
