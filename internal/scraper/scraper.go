package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/extract"
	"github.com/pfrederiksen/campus-events/internal/fallback"
	"github.com/pfrederiksen/campus-events/internal/filter"
	"github.com/pfrederiksen/campus-events/internal/logger"
	"github.com/pfrederiksen/campus-events/internal/metrics"
)

const EventsURL = "https://events.ucf.edu"

// Mode selects how strategy outputs are combined.
type Mode string

const (
	// ModeFirstMatch stops at the first strategy with a validated candidate.
	ModeFirstMatch Mode = "first-match"
	// ModeComprehensive unions every strategy's candidates before deduplication.
	ModeComprehensive Mode = "comprehensive"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFirstMatch, ModeComprehensive:
		return Mode(s), nil
	case "":
		return ModeFirstMatch, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeFirstMatch, ModeComprehensive)
}

// Config configures a Scraper. Zero values select the defaults noted per field.
type Config struct {
	URL          string // EventsURL
	ExpectedHost string // host of URL
	Timeout      time.Duration
	Mode         Mode
	Strategies   []string // DefaultStrategyOrder

	Source    PageSource         // HTTPSource
	Validator *filter.Validator  // DefaultVocabulary
	Extractor *extract.Extractor // standard defaults, no location patterns
	Fallback  *fallback.Provider
	Logger    *logger.Logger
	Now       func() time.Time
}

// Scraper runs the fetch, extract, validate, dedupe and fallback pipeline.
type Scraper struct {
	url          string
	expectedHost string
	timeout      time.Duration
	mode         Mode
	source       PageSource
	strategies   []Strategy
	validator    *filter.Validator
	extractor    *extract.Extractor
	fallback     *fallback.Provider
	log          *logger.Logger
	now          func() time.Time
}

// New creates a Scraper from cfg.
func New(cfg Config) (*Scraper, error) {
	if cfg.URL == "" {
		cfg.URL = EventsURL
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid events URL %q", cfg.URL)
	}
	if cfg.ExpectedHost == "" {
		cfg.ExpectedHost = u.Hostname()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Timeout
	}
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	if cfg.Source == nil {
		cfg.Source = NewHTTPSource(UserAgent, cfg.Timeout)
	}
	if cfg.Validator == nil {
		cfg.Validator = filter.NewValidator(filter.DefaultVocabulary())
	}
	if cfg.Extractor == nil {
		cfg.Extractor, err = extract.New(cfg.URL, extract.Options{
			Defaults:   event.StandardDefaults(),
			TitleCheck: cfg.Validator.Valid,
		})
		if err != nil {
			return nil, err
		}
	}
	if cfg.Fallback == nil {
		cfg.Fallback = fallback.New(cfg.URL, cfg.Extractor.Defaults().Date)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	strategies, err := NewStrategies(cfg.Strategies, cfg.Extractor, cfg.Validator)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		url:          cfg.URL,
		expectedHost: cfg.ExpectedHost,
		timeout:      cfg.Timeout,
		mode:         mode,
		source:       cfg.Source,
		strategies:   strategies,
		validator:    cfg.Validator,
		extractor:    cfg.Extractor,
		fallback:     cfg.Fallback,
		log:          cfg.Logger,
		now:          cfg.Now,
	}, nil
}

// StrategyResult is the outcome of one strategy within a run.
type StrategyResult struct {
	Strategy   string
	Candidates int   // produced by the strategy
	Accepted   int   // passed validation
	Err        error // joined per-item errors, nil on a clean run
}

// Diagnostics describes how a run arrived at its result.
type Diagnostics struct {
	RunID      string
	Mode       Mode
	StartedAt  time.Time
	Duration   time.Duration
	FinalURL   string
	FetchErr   error
	Strategies []StrategyResult
	Candidates int
	Rejected   map[filter.Reason]int
	Duplicates int
	Fallback   bool
}

// Result is the output of a pipeline run. Events is never empty.
type Result struct {
	Events      []*event.Event
	Diagnostics Diagnostics
}

// Run fetches the page and produces the day's events. It never fails: fetch
// errors and empty extractions return the fallback list, and the cause is
// recorded in the Diagnostics.
func (s *Scraper) Run(ctx context.Context) *Result {
	start := s.now()
	diag := Diagnostics{
		RunID:     uuid.NewString(),
		Mode:      s.mode,
		StartedAt: start,
		Rejected:  make(map[filter.Reason]int),
	}

	log := s.log.With(logger.Fields{"run_id": diag.RunID})
	log.Debug("Pipeline started", logger.Fields{"url": s.url, "mode": string(s.mode)})

	events := s.scrape(ctx, &diag, start, log)
	if len(events) == 0 {
		diag.Fallback = true
		events = s.fallback.Events(start)
	}
	diag.Duration = s.now().Sub(start)

	outcome := metrics.OutcomeScraped
	if diag.Fallback {
		outcome = metrics.OutcomeFallback
	}
	metrics.ObserveRun(outcome, diag.Duration)
	for reason, n := range diag.Rejected {
		metrics.Rejected(string(reason), n)
	}

	fields := logger.Fields{
		"events":     len(events),
		"candidates": diag.Candidates,
		"duplicates": diag.Duplicates,
		"fallback":   diag.Fallback,
		"duration":   diag.Duration.String(),
	}
	if diag.FetchErr != nil {
		log.Warn("Pipeline used fallback after fetch failure", fields)
	} else {
		log.Info("Pipeline finished", fields)
	}

	return &Result{Events: events, Diagnostics: diag}
}

func (s *Scraper) scrape(ctx context.Context, diag *Diagnostics, at time.Time, log *logger.Logger) []*event.Event {
	doc, err := s.fetch(ctx, diag)
	if err != nil {
		diag.FetchErr = err
		metrics.FetchFailed()
		log.Warn("Fetch failed", logger.Fields{"url": s.url, "error": err.Error()})
		return nil
	}

	var valid []*event.Event
	defaults := s.extractor.Defaults()
	for _, strategy := range s.strategies {
		found, err := strategy.Extract(doc)
		for _, evt := range found {
			evt.Source = strategy.Name()
			evt.ScrapedAt = at
			defaults.Apply(evt)
		}

		accepted, rejected := s.validator.Apply(found)
		for reason, n := range rejected {
			diag.Rejected[reason] += n
		}
		diag.Candidates += len(found)
		diag.Strategies = append(diag.Strategies, StrategyResult{
			Strategy:   strategy.Name(),
			Candidates: len(found),
			Accepted:   len(accepted),
			Err:        err,
		})
		metrics.ObserveStrategy(strategy.Name(), len(found), err != nil)

		if err != nil {
			log.Warn("Strategy reported item errors", logger.Fields{
				"strategy": strategy.Name(),
				"error":    err.Error(),
			})
		}
		log.Debug("Strategy finished", logger.Fields{
			"strategy":   strategy.Name(),
			"candidates": len(found),
			"accepted":   len(accepted),
		})

		valid = append(valid, accepted...)
		if s.mode == ModeFirstMatch && len(accepted) > 0 {
			break
		}
	}

	unique := event.Dedupe(valid)
	diag.Duplicates = len(valid) - len(unique)
	return unique
}

func (s *Scraper) fetch(ctx context.Context, diag *Diagnostics) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.source.Fetch(ctx, s.url)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			err = &FetchError{URL: s.url, Err: err}
		}
		return nil, err
	}
	diag.FinalURL = page.FinalURL

	if err := CheckHost(page.FinalURL, s.expectedHost); err != nil {
		return nil, &FetchError{URL: s.url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: fmt.Errorf("parsing HTML: %w", err)}
	}
	return doc, nil
}

// MarshalJSON renders Err as a string.
func (r StrategyResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Strategy   string `json:"strategy"`
		Candidates int    `json:"candidates"`
		Accepted   int    `json:"accepted"`
		Error      string `json:"error,omitempty"`
	}{r.Strategy, r.Candidates, r.Accepted, errString(r.Err)})
}

// MarshalJSON renders errors as strings and the duration in milliseconds.
func (d Diagnostics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID      string                `json:"run_id"`
		Mode       Mode                  `json:"mode"`
		StartedAt  time.Time             `json:"started_at"`
		DurationMS int64                 `json:"duration_ms"`
		FinalURL   string                `json:"final_url,omitempty"`
		FetchError string                `json:"fetch_error,omitempty"`
		Strategies []StrategyResult      `json:"strategies"`
		Candidates int                   `json:"candidates"`
		Rejected   map[filter.Reason]int `json:"rejected,omitempty"`
		Duplicates int                   `json:"duplicates"`
		Fallback   bool                  `json:"fallback"`
	}{
		RunID:      d.RunID,
		Mode:       d.Mode,
		StartedAt:  d.StartedAt,
		DurationMS: d.Duration.Milliseconds(),
		FinalURL:   d.FinalURL,
		FetchError: errString(d.FetchErr),
		Strategies: d.Strategies,
		Candidates: d.Candidates,
		Rejected:   d.Rejected,
		Duplicates: d.Duplicates,
		Fallback:   d.Fallback,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
