package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/extract"
	"github.com/pfrederiksen/campus-events/internal/filter"
)

// Strategy names, also used as the Source label of the records they produce.
const (
	StrategyStructuredData = "structured-data"
	StrategySection        = "section"
	StrategyAttributes     = "attributes"
	StrategyClassPattern   = "class-pattern"
	StrategyFreeText       = "free-text"
	StrategyTabular        = "tabular"
)

// DefaultStrategyOrder lists every strategy in priority order.
var DefaultStrategyOrder = []string{
	StrategyStructuredData,
	StrategySection,
	StrategyAttributes,
	StrategyClassPattern,
	StrategyFreeText,
	StrategyTabular,
}

// Strategy is one independent way of finding candidate events in a document.
// Extract returns whatever candidates it found along with any per-item errors;
// a non-nil error does not invalidate the returned candidates.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) ([]*event.Event, error)
}

// NewStrategy builds the named strategy.
func NewStrategy(name string, x *extract.Extractor, v *filter.Validator) (Strategy, error) {
	switch name {
	case StrategyStructuredData:
		return &structuredData{x: x}, nil
	case StrategySection:
		return &section{x: x}, nil
	case StrategyAttributes:
		return &attributes{x: x}, nil
	case StrategyClassPattern:
		return &classPattern{x: x}, nil
	case StrategyFreeText:
		return &freeText{x: x, v: v}, nil
	case StrategyTabular:
		return &tabular{x: x}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// NewStrategies builds strategies for names in order. Nil or empty names uses
// DefaultStrategyOrder.
func NewStrategies(names []string, x *extract.Extractor, v *filter.Validator) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultStrategyOrder
	}
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := NewStrategy(name, x, v)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}
