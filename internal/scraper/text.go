package scraper

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/extract"
	"github.com/pfrederiksen/campus-events/internal/filter"
)

// freeText turns lines of visible page text into candidates.
type freeText struct {
	x *extract.Extractor
	v *filter.Validator
}

func (s *freeText) Name() string { return StrategyFreeText }

func (s *freeText) Extract(doc *goquery.Document) ([]*event.Event, error) {
	var events []*event.Event
	for _, line := range extract.Lines(doc.Find("body")) {
		if s.v.LooksLikeEventLine(line) {
			events = append(events, s.x.Line(line))
		}
	}
	return events, nil
}

// tabular maps table rows and list items onto events.
type tabular struct {
	x *extract.Extractor
}

const (
	minListItemLength = 10
	maxListItemLength = 100
)

func (s *tabular) Name() string { return StrategyTabular }

func (s *tabular) Extract(doc *goquery.Document) ([]*event.Event, error) {
	var events []*event.Event
	defaults := s.x.Defaults()

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		title := extract.CleanText(cells.Eq(0).Text())
		if title == "" {
			return
		}
		evt := &event.Event{
			Title:       title,
			Description: defaults.Description,
			Date:        cellText(cells, 1, defaults.Date),
			Time:        cellText(cells, 2, defaults.Time),
			Location:    cellText(cells, 3, defaults.Location),
		}
		evt.Link, _ = s.x.Link(cells.Eq(0))
		events = append(events, evt)
	})

	doc.Find("ul > li, ol > li").Each(func(_ int, item *goquery.Selection) {
		text := extract.CleanText(item.Text())
		if n := utf8.RuneCountInString(text); n < minListItemLength || n > maxListItemLength {
			return
		}
		evt := &event.Event{Title: text, Description: defaults.Description}
		evt.Date, _ = s.x.Date(text)
		evt.Time, _ = s.x.Time(text)
		evt.Location, _ = s.x.Location(text)
		evt.Link, _ = s.x.Link(item)
		events = append(events, evt)
	})

	return events, nil
}

func cellText(cells *goquery.Selection, i int, fallback string) string {
	if i >= cells.Length() {
		return fallback
	}
	if text := extract.CleanText(cells.Eq(i).Text()); text != "" {
		return text
	}
	return fallback
}
