package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/campus-events/internal/event"
)

const (
	// MaxTitleLength bounds the plain-text line accepted as a title.
	MaxTitleLength = 100
	// MaxDescriptionLength bounds extracted descriptions.
	MaxDescriptionLength = 300
)

// timePatterns are tried in order; the first submatch is the time label.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bat\s+(\d{1,2}(?::\d{2})?\s*(?:[ap]\.m\.|[ap]m\b))`),
	regexp.MustCompile(`(?i)\bat\s+(\d{1,2}:\d{2})\b`),
	regexp.MustCompile(`(?i)\bat\s+(morning|afternoon|evening|night)\b`),
	regexp.MustCompile(`(?i)\bat\s+(all day|ongoing)\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s*(?:[ap]\.m\.|[ap]m\b))`),
	regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`),
}

const monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+` + monthPattern + `\b\.?\s+\d{1,2}(?:,?\s+\d{4})?\b`),
	regexp.MustCompile(`(?i)\b` + monthPattern + `\b\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b(?:today|tomorrow)\b`),
	regexp.MustCompile(`(?i)\b` + monthPattern + `\b\.?\s+\d{1,2}\b`),
}

const (
	titleSelector       = "h1, h2, h3, h4, h5, h6"
	emphasisSelector    = "strong, b, em"
	descriptionSelector = "[class*='desc'], [class*='summary'], [class*='content']"
)

// Options configures an Extractor.
type Options struct {
	// LocationPatterns are regular expressions tried in order, case-insensitively.
	LocationPatterns []string
	Defaults         event.Defaults
	// TitleCheck accepts or rejects a candidate title. Nil accepts any non-empty title.
	TitleCheck func(string) bool
}

// Extractor runs the field extractors for one site.
type Extractor struct {
	base       *url.URL
	baseURL    string
	locations  []*regexp.Regexp
	defaults   event.Defaults
	titleCheck func(string) bool
}

// New creates an Extractor that resolves links against baseURL.
func New(baseURL string, opts Options) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	locations := make([]*regexp.Regexp, 0, len(opts.LocationPatterns))
	for _, p := range opts.LocationPatterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("compiling location pattern %q: %w", p, err)
		}
		locations = append(locations, re)
	}

	check := opts.TitleCheck
	if check == nil {
		check = func(s string) bool { return s != "" }
	}

	return &Extractor{
		base:       base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		locations:  locations,
		defaults:   opts.Defaults,
		titleCheck: check,
	}, nil
}

// Defaults returns the sentinels this extractor substitutes for missing fields.
func (x *Extractor) Defaults() event.Defaults {
	return x.defaults
}

// Title returns the first acceptable title in the fragment: a hyperlink, a
// heading, an emphasized element, then the first short line of text.
func (x *Extractor) Title(sel *goquery.Selection) (string, bool) {
	for _, selector := range []string{"a[href]", titleSelector, emphasisSelector} {
		candidate := CleanText(first(sel, selector).Text())
		if candidate != "" && x.titleCheck(candidate) {
			return candidate, true
		}
	}

	for _, line := range Lines(sel) {
		if len([]rune(line)) > MaxTitleLength {
			continue
		}
		if x.titleCheck(line) {
			return line, true
		}
		break
	}
	return "", false
}

// Time returns the first time-of-day label in text, without a leading "at".
func (x *Extractor) Time(text string) (string, bool) {
	for _, re := range timePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return x.defaults.Time, false
}

// Date returns the first calendar day label in text.
func (x *Extractor) Date(text string) (string, bool) {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	return x.defaults.Date, false
}

// Location returns the first configured location pattern found in text.
func (x *Extractor) Location(text string) (string, bool) {
	for _, re := range x.locations {
		if m := strings.TrimSpace(re.FindString(text)); m != "" {
			return m, true
		}
	}
	return x.defaults.Location, false
}

// Description returns the text of the first description-like element,
// truncated to MaxDescriptionLength.
func (x *Extractor) Description(sel *goquery.Selection) (string, bool) {
	text := CleanText(sel.Find(descriptionSelector).First().Text())
	if text == "" {
		return x.defaults.Description, false
	}
	return Truncate(text, MaxDescriptionLength), true
}

// Link returns the resolved href of the first hyperlink in the fragment.
func (x *Extractor) Link(sel *goquery.Selection) (string, bool) {
	href, ok := first(sel, "a[href]").Attr("href")
	if !ok {
		return "", false
	}
	link := x.ResolveURL(href)
	return link, link != ""
}

// Image returns the resolved source of the first image in the fragment.
func (x *Extractor) Image(sel *goquery.Selection) (string, bool) {
	img := first(sel, "img[src], img[data-src]")
	src, ok := img.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		src, _ = img.Attr("data-src")
	}
	link := x.ResolveURL(src)
	return link, link != ""
}

// ResolveURL makes href absolute. Root-relative paths join the site root,
// absolute URLs pass through and anything else is appended to the base URL.
func (x *Extractor) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return x.base.Scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return x.base.Scheme + "://" + x.base.Host + href
	default:
		return x.baseURL + "/" + href
	}
}

// Fragment runs every extractor over a markup fragment. It reports false when
// no acceptable title is found.
func (x *Extractor) Fragment(sel *goquery.Selection) (*event.Event, bool) {
	title, ok := x.Title(sel)
	if !ok {
		return nil, false
	}

	text := VisibleText(sel)
	evt := &event.Event{Title: title}
	evt.Description, _ = x.Description(sel)
	evt.Date, _ = x.Date(text)
	evt.Time, _ = x.Time(text)
	evt.Location, _ = x.Location(text)
	evt.Link, _ = x.Link(sel)
	evt.Image, _ = x.Image(sel)
	return evt, true
}

// Line builds a candidate from a single line of free text.
func (x *Extractor) Line(line string) *event.Event {
	line = CleanText(line)
	evt := &event.Event{Title: Truncate(line, MaxTitleLength)}
	if evt.Title != line {
		evt.Description = line
	} else {
		evt.Description = x.defaults.Description
	}
	evt.Date, _ = x.Date(line)
	evt.Time, _ = x.Time(line)
	evt.Location, _ = x.Location(line)
	return evt
}

// first returns sel itself when it matches selector, else its first matching descendant.
func first(sel *goquery.Selection, selector string) *goquery.Selection {
	if sel.Is(selector) {
		return sel.First()
	}
	return sel.Find(selector).First()
}
