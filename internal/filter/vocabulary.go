package filter

import (
	"regexp"
	"strings"
)

// Vocabulary holds the keyword lists that drive validation.
// Deployments extend Indicators with site-specific named entities via Entities.
type Vocabulary struct {
	Indicators []string `yaml:"indicators"`
	Entities   []string `yaml:"entities"`
	Navigation []string `yaml:"navigation"`
	Noise      []string `yaml:"noise"`
}

// DefaultVocabulary returns the built-in keyword lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Indicators: []string{
			"course", "training", "workshop", "seminar", "conference", "symposium",
			"tournament", "game", "match", "competition", "contest", "vs",
			"fair", "festival", "celebration", "expo",
			"lecture", "presentation", "panel", "talk",
			"exhibition", "gallery", "showcase",
			"tour", "open house", "information session", "orientation",
			"volunteer", "fundraiser", "give back",
			"sports", "athletics", "volleyball", "basketball", "football", "soccer", "baseball", "softball", "tennis",
			"concert", "music", "performance", "musical", "theatre", "theater", "cinema", "film",
			"career", "internship", "certification",
			"academic", "research", "student", "organization", "club",
		},
		Navigation: []string{
			"login", "log in", "register", "subscribe", "filter", "search", "manage",
			"menu", "footer", "header", "sidebar", "navigation",
			"cookie", "cookies", "privacy", "terms", "copyright",
		},
		Noise: []string{
			"login", "log in", "register", "subscribe", "filter", "search", "manage",
			"day view", "week view", "month view", "year view",
			"navigation", "menu", "header", "footer", "sidebar",
			"cookie", "privacy", "terms of use", "copyright", "all rights reserved",
			"function", "var", "{", "}", "=>", "();",
		},
	}
}

// termMatcher matches any of a list of terms at a word start, case-insensitively.
// Terms that begin with punctuation are matched literally anywhere.
type termMatcher struct {
	re *regexp.Regexp
}

func newTermMatcher(terms []string, wholeWord bool) *termMatcher {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		p := regexp.QuoteMeta(strings.ToLower(term))
		if isWordChar(term[0]) {
			p = `\b` + p
		}
		if wholeWord && isWordChar(term[len(term)-1]) {
			p += `\b`
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return &termMatcher{}
	}
	return &termMatcher{re: regexp.MustCompile(`(?i)(?:` + strings.Join(parts, "|") + `)`)}
}

func (m *termMatcher) MatchString(s string) bool {
	return m.re != nil && m.re.MatchString(s)
}

func isWordChar(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
