// Package config loads the YAML configuration for campus-events.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // cache.timezone must resolve in minimal containers

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/filter"
	"github.com/pfrederiksen/campus-events/internal/logger"
	"github.com/pfrederiksen/campus-events/internal/scraper"
	"github.com/pfrederiksen/campus-events/internal/storage"
)

// Fetcher names.
const (
	FetcherHTTP  = "http"
	FetcherColly = "colly"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Notifier kinds.
const (
	NotifyNone     = "none"
	NotifyDryRun   = "dry-run"
	NotifyTwitter  = "twitter"
	NotifyTelegram = "telegram"
)

type SiteConfig struct {
	URL          string        `yaml:"url"`           // https://events.ucf.edu
	ExpectedHost string        `yaml:"expected_host"` // defaults to the URL's host
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"` // whole pipeline run, e.g. 30s
}

type FetcherConfig struct {
	Type string `yaml:"type"` // http | colly
}

type ExtractionConfig struct {
	Mode             string         `yaml:"mode"`       // first-match | comprehensive
	Strategies       []string       `yaml:"strategies"` // order matters
	Defaults         event.Defaults `yaml:"defaults"`
	LocationPatterns []string       `yaml:"location_patterns"`
	// Vocabulary lists replace the built-in ones when set.
	Vocabulary filter.Vocabulary `yaml:"vocabulary"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"` // localhost:6379
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	TTL      time.Duration `yaml:"ttl"`
}

type CacheConfig struct {
	Backend  string      `yaml:"backend"` // file | redis | memory
	Dir      string      `yaml:"dir"`     // file backend only
	Redis    RedisConfig `yaml:"redis"`
	Timezone string      `yaml:"timezone"` // IANA name used for the day boundary
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type NotifyConfig struct {
	Type      string `yaml:"type"` // none | dry-run | twitter | telegram
	MaxTitles int    `yaml:"max_titles"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Cache      CacheConfig      `yaml:"cache"`
	Server     ServerConfig     `yaml:"server"`
	Notify     NotifyConfig     `yaml:"notify"`
	Log        LogConfig        `yaml:"log"`
}

// DefaultLocationPatterns are the venue patterns used on events.ucf.edu.
var DefaultLocationPatterns = []string{
	`RWC:\s*\d+`,
	`Student Union`,
	`The Venue`,
	`classroom \d+`,
	`Theatre UCF`,
	`Virtual`,
	`Online`,
	`Zoom`,
	`Microsoft Teams`,
	`WebEx`,
	`Campus Recreation`,
	`Recreation and Wellness Center`,
	`Memory Mall`,
	`Reflection Pond`,
	`Library`,
	`Engineering Building`,
	`Business Administration`,
	`Education Building`,
	`Health Sciences`,
	`Visual Arts Building`,
}

// Default returns the deployment defaults. Load starts from these, so keys
// absent from the file keep their default value.
func Default() Config {
	return Config{
		Site: SiteConfig{
			URL:       scraper.EventsURL,
			UserAgent: scraper.UserAgent,
			Timeout:   scraper.Timeout,
		},
		Fetcher: FetcherConfig{Type: FetcherHTTP},
		Extraction: ExtractionConfig{
			Mode:             string(scraper.ModeFirstMatch),
			Strategies:       append([]string(nil), scraper.DefaultStrategyOrder...),
			Defaults:         event.StandardDefaults(),
			LocationPatterns: append([]string(nil), DefaultLocationPatterns...),
			Vocabulary:       filter.DefaultVocabulary(),
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Dir:     storage.DefaultDataDir,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  storage.DefaultRedisKey,
				TTL:  storage.DefaultRedisTTL,
			},
			Timezone: "America/New_York",
		},
		Server: ServerConfig{Addr: ":5001"},
		Notify: NotifyConfig{Type: NotifyNone, MaxTitles: 5},
		Log:    LogConfig{Level: string(logger.LevelInfo)},
	}
}

// Load reads the YAML file at path over Default and validates the result.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Site.URL == "" {
		errs = append(errs, errors.New("site.url is required"))
	}
	if c.Site.Timeout < 0 {
		errs = append(errs, errors.New("site.timeout must not be negative"))
	}

	switch c.Fetcher.Type {
	case FetcherHTTP, FetcherColly:
	default:
		errs = append(errs, fmt.Errorf("fetcher.type %q: want %s or %s", c.Fetcher.Type, FetcherHTTP, FetcherColly))
	}

	if _, err := scraper.ParseMode(c.Extraction.Mode); err != nil {
		errs = append(errs, fmt.Errorf("extraction.mode: %w", err))
	}
	known := make(map[string]bool, len(scraper.DefaultStrategyOrder))
	for _, name := range scraper.DefaultStrategyOrder {
		known[name] = true
	}
	for _, name := range c.Extraction.Strategies {
		if !known[name] {
			errs = append(errs, fmt.Errorf("extraction.strategies: unknown strategy %q", name))
		}
	}

	switch c.Cache.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q: want %s, %s or %s", c.Cache.Backend, BackendFile, BackendRedis, BackendMemory))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	switch c.Notify.Type {
	case NotifyNone, NotifyDryRun, NotifyTwitter, NotifyTelegram:
	default:
		errs = append(errs, fmt.Errorf("notify.type %q: want %s, %s, %s or %s", c.Notify.Type, NotifyNone, NotifyDryRun, NotifyTwitter, NotifyTelegram))
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// Location resolves the cache timezone. Empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Cache.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Cache.Timezone)
	if err != nil {
		return nil, fmt.Errorf("cache.timezone: %w", err)
	}
	return loc, nil
}
