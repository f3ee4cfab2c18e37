package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/campus-events/internal/scraper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  timeout: 5s
extraction:
  mode: comprehensive
  strategies: [free-text, structured-data]
  defaults:
    date: Today
cache:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 24h
  timezone: UTC
notify:
  type: dry-run
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.Timeout != 5*time.Second {
		t.Errorf("Site.Timeout = %v, want 5s", cfg.Site.Timeout)
	}
	if cfg.Site.URL != scraper.EventsURL {
		t.Errorf("Site.URL = %q, want default %q", cfg.Site.URL, scraper.EventsURL)
	}
	if cfg.Extraction.Mode != "comprehensive" {
		t.Errorf("Extraction.Mode = %q", cfg.Extraction.Mode)
	}
	if got := strings.Join(cfg.Extraction.Strategies, ","); got != "free-text,structured-data" {
		t.Errorf("Extraction.Strategies = %q", got)
	}
	if cfg.Extraction.Defaults.Date != "Today" {
		t.Errorf("Defaults.Date = %q, want Today", cfg.Extraction.Defaults.Date)
	}
	// Sibling keys keep their defaults.
	if cfg.Extraction.Defaults.Time != "Time TBD" {
		t.Errorf("Defaults.Time = %q, want default", cfg.Extraction.Defaults.Time)
	}
	if len(cfg.Extraction.LocationPatterns) != len(DefaultLocationPatterns) {
		t.Errorf("LocationPatterns should keep defaults, got %d", len(cfg.Extraction.LocationPatterns))
	}
	if cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.TTL != 24*time.Hour {
		t.Errorf("Cache.Redis = %+v", cfg.Cache.Redis)
	}
	if cfg.Cache.Redis.Key == "" {
		t.Error("Cache.Redis.Key should keep its default")
	}
	if cfg.Notify.Type != NotifyDryRun || cfg.Notify.MaxTitles != 5 {
		t.Errorf("Notify = %+v", cfg.Notify)
	}

	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v; want UTC", loc, err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "site: [", "parsing config"},
		{"unknown mode", "extraction:\n  mode: fastest\n", "extraction.mode"},
		{"unknown strategy", "extraction:\n  strategies: [section, guesswork]\n", `unknown strategy "guesswork"`},
		{"unknown backend", "cache:\n  backend: sqlite\n", "cache.backend"},
		{"redis without addr", "cache:\n  backend: redis\n  redis:\n    addr: \"\"\n", "cache.redis.addr"},
		{"bad timezone", "cache:\n  timezone: Mars/Olympus\n", "cache.timezone"},
		{"unknown fetcher", "fetcher:\n  type: curl\n", "fetcher.type"},
		{"unknown notifier", "notify:\n  type: email\n", "notify.type"},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Fetcher.Type = "curl"
	cfg.Notify.Type = "email"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"fetcher.type", "notify.type"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}
