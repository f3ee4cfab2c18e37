// Package filter decides whether a candidate event title is a real event.
//
// A candidate is rejected, never corrected, when it is too short or too long,
// has fewer than two words, has the shape of a calendar-grid artifact (a month and
// year, a bare clock time, a day abbreviation), is mostly navigation chrome, or
// contains no event-indicator keyword.
//
// Example usage:
//
//	v := filter.NewValidator(filter.DefaultVocabulary())
//	ok, reason := v.Check("UCF Robotics Competition")
//	kept, rejected := v.Apply(candidates)
package filter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pfrederiksen/campus-events/internal/event"
)

const (
	MinTitleLength = 5
	MaxTitleLength = 100
	MinTitleTokens = 2

	// Titles with fewer tokens than this are rejected when they contain a navigation word.
	navigationTokenLimit = 4

	MinLineLength = 10
	MaxLineLength = 300
)

// Reason explains why a title was rejected. The empty Reason means accepted.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonTooShort     Reason = "too_short"
	ReasonTooLong      Reason = "too_long"
	ReasonMonthYear    Reason = "month_year"
	ReasonCalendarGrid Reason = "calendar_grid"
	ReasonBareTime     Reason = "bare_time"
	ReasonBareMonth    Reason = "bare_month"
	ReasonBareNumber   Reason = "bare_number"
	ReasonDayAbbrev    Reason = "day_abbreviation"
	ReasonSingleToken  Reason = "single_token"
	ReasonNavigation   Reason = "navigation"
	ReasonNoIndicator  Reason = "no_indicator"
)

const monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// shapes are full-match patterns for calendar and layout artifacts, checked in order.
var shapes = []struct {
	re     *regexp.Regexp
	reason Reason
}{
	{regexp.MustCompile(`(?i)^` + monthNames + `\.?\s*\d{4}$`), ReasonMonthYear},
	{regexp.MustCompile(`^[A-Za-z]{1,12}\d+$`), ReasonCalendarGrid},
	{regexp.MustCompile(`^\d{1,2}:\d{2}$`), ReasonBareTime},
	{regexp.MustCompile(`(?i)^` + monthNames + `\.?$`), ReasonBareMonth},
	{regexp.MustCompile(`^\d{1,2}$`), ReasonBareNumber},
	{regexp.MustCompile(`^[A-Za-z]{2,3}$`), ReasonDayAbbrev},
}

// Validator applies the title validity rules for one vocabulary.
type Validator struct {
	indicators *termMatcher
	noise      *termMatcher
	navigation map[string]bool
	navPhrases []string
}

// NewValidator builds a validator. Entities are treated as additional indicators.
func NewValidator(vocab Vocabulary) *Validator {
	indicators := make([]string, 0, len(vocab.Indicators)+len(vocab.Entities))
	indicators = append(indicators, vocab.Indicators...)
	indicators = append(indicators, vocab.Entities...)

	v := &Validator{
		indicators: newTermMatcher(indicators, false),
		noise:      newTermMatcher(vocab.Noise, true),
		navigation: make(map[string]bool),
	}
	for _, word := range vocab.Navigation {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if strings.Contains(word, " ") {
			v.navPhrases = append(v.navPhrases, word)
			continue
		}
		v.navigation[word] = true
	}
	return v
}

// Check applies every title rule in order and reports the first one that fails.
func (v *Validator) Check(title string) (bool, Reason) {
	title = strings.TrimSpace(title)

	n := utf8.RuneCountInString(title)
	if n < MinTitleLength {
		return false, ReasonTooShort
	}
	if n > MaxTitleLength {
		return false, ReasonTooLong
	}

	for _, shape := range shapes {
		if shape.re.MatchString(title) {
			return false, shape.reason
		}
	}

	tokens := strings.Fields(title)
	if len(tokens) < MinTitleTokens {
		return false, ReasonSingleToken
	}

	if len(tokens) < navigationTokenLimit && v.hasNavigation(title, tokens) {
		return false, ReasonNavigation
	}

	if !v.HasIndicator(title) {
		return false, ReasonNoIndicator
	}

	return true, ReasonNone
}

// Valid reports whether title passes every rule.
func (v *Validator) Valid(title string) bool {
	ok, _ := v.Check(title)
	return ok
}

// HasIndicator reports whether text contains an event-indicator keyword or entity.
func (v *Validator) HasIndicator(text string) bool {
	return v.indicators.MatchString(text)
}

// IsNoise reports whether text contains navigation, chrome or code-like vocabulary.
func (v *Validator) IsNoise(text string) bool {
	return v.noise.MatchString(text)
}

// LooksLikeEventLine reports whether a line of visible page text is a plausible
// event: bounded length, at least one indicator and no noise vocabulary.
func (v *Validator) LooksLikeEventLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < MinLineLength || n > MaxLineLength {
		return false
	}
	return v.HasIndicator(line) && !v.IsNoise(line)
}

func (v *Validator) hasNavigation(title string, tokens []string) bool {
	for _, token := range tokens {
		word := strings.ToLower(strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if v.navigation[word] {
			return true
		}
	}
	lower := strings.ToLower(title)
	for _, phrase := range v.navPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Apply drops every event whose title fails Check and returns the survivors in
// their original order together with a count of rejections per reason.
func (v *Validator) Apply(events []*event.Event) ([]*event.Event, map[Reason]int) {
	kept := make([]*event.Event, 0, len(events))
	rejected := make(map[Reason]int)
	for _, evt := range events {
		if ok, reason := v.Check(evt.Title); !ok {
			rejected[reason]++
			continue
		}
		kept = append(kept, evt)
	}
	return kept, rejected
}
