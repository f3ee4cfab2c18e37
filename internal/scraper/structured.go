package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/extract"
)

// structuredData reads schema.org Event objects from JSON-LD script blocks.
type structuredData struct {
	x *extract.Extractor
}

func (s *structuredData) Name() string { return StrategyStructuredData }

func (s *structuredData) Extract(doc *goquery.Document) ([]*event.Event, error) {
	var (
		events []*event.Event
		errs   []error
	)

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(sel.Text())), &data); err != nil {
			errs = append(errs, &ParseError{Strategy: s.Name(), Item: fmt.Sprintf("block %d", i), Err: err})
			return
		}

		for _, obj := range eventObjects(data) {
			evt, err := s.toEvent(obj)
			if err != nil {
				errs = append(errs, &ParseError{Strategy: s.Name(), Item: fmt.Sprintf("block %d", i), Err: err})
				continue
			}
			events = append(events, evt)
		}
	})

	return events, errors.Join(errs...)
}

// eventObjects walks a decoded JSON-LD value and returns every object typed Event,
// looking inside top-level lists and @graph containers.
func eventObjects(data interface{}) []map[string]interface{} {
	var found []map[string]interface{}
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			found = append(found, eventObjects(item)...)
		}
	case map[string]interface{}:
		if isEventType(v["@type"]) {
			found = append(found, v)
		}
		if graph, ok := v["@graph"]; ok {
			found = append(found, eventObjects(graph)...)
		}
	}
	return found
}

func isEventType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Event"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Event" {
				return true
			}
		}
	}
	return false
}

func (s *structuredData) toEvent(obj map[string]interface{}) (*event.Event, error) {
	title := extract.CleanText(stringField(obj["name"]))
	if title == "" {
		return nil, errors.New("event has no name")
	}

	defaults := s.x.Defaults()
	evt := &event.Event{
		Title:       title,
		Description: defaults.Description,
		Date:        defaults.Date,
		Time:        defaults.Time,
		Location:    defaults.Location,
		Link:        s.x.ResolveURL(stringField(obj["url"])),
		Image:       s.x.ResolveURL(imageField(obj["image"])),
	}

	if desc := extract.CleanText(stringField(obj["description"])); desc != "" {
		evt.Description = extract.Truncate(desc, extract.MaxDescriptionLength)
	}
	if date, clock := splitStartDate(stringField(obj["startDate"])); date != "" {
		evt.Date = date
		if clock != "" {
			evt.Time = clock
		}
	}
	if loc := locationField(obj["location"]); loc != "" {
		evt.Location = loc
	}
	return evt, nil
}

// splitStartDate turns "2025-11-03T18:00:00" into ("November 03, 2025", "18:00").
// A date that is not ISO formatted is returned as given.
func splitStartDate(start string) (date, clock string) {
	start = strings.TrimSpace(start)
	if start == "" {
		return "", ""
	}

	day, rest, hasTime := strings.Cut(start, "T")
	if long, ok := event.FormatLongDate(day); ok {
		date = long
	} else {
		date = day
	}
	if hasTime && len(rest) >= 5 && rest[2] == ':' {
		clock = rest[:5]
	}
	return date, clock
}

func stringField(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func locationField(v interface{}) string {
	switch loc := v.(type) {
	case string:
		return extract.CleanText(loc)
	case map[string]interface{}:
		return extract.CleanText(stringField(loc["name"]))
	case []interface{}:
		for _, item := range loc {
			if name := locationField(item); name != "" {
				return name
			}
		}
	}
	return ""
}

func imageField(v interface{}) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]interface{}:
		return stringField(img["url"])
	case []interface{}:
		for _, item := range img {
			if src := imageField(item); src != "" {
				return src
			}
		}
	}
	return ""
}
