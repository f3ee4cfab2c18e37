package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/pfrederiksen/campus-events/internal/cache"
	"github.com/pfrederiksen/campus-events/internal/config"
	"github.com/pfrederiksen/campus-events/internal/extract"
	"github.com/pfrederiksen/campus-events/internal/filter"
	"github.com/pfrederiksen/campus-events/internal/logger"
	"github.com/pfrederiksen/campus-events/internal/notifier"
	"github.com/pfrederiksen/campus-events/internal/scraper"
	"github.com/pfrederiksen/campus-events/internal/storage"
)

// app holds the wired components for one command invocation.
type app struct {
	gate    *cache.Gate
	closers []io.Closer
}

func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// newApp builds the pipeline and the cache gate described by cfg.
// notifyOut receives dry-run digests.
func newApp(ctx context.Context, cfg config.Config, log *logger.Logger, notifyOut io.Writer) (*app, error) {
	a := &app{}

	store, err := newStore(cfg, a)
	if err != nil {
		return nil, err
	}

	sc, err := newScraper(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []cache.Option{cache.WithLocation(loc), cache.WithLogger(log)}
	n, err := newNotifier(cfg, notifyOut)
	if err != nil {
		a.Close()
		return nil, err
	}
	if n != nil {
		opts = append(opts, cache.WithNotifier(n))
	}

	a.gate = cache.New(ctx, store, sc, opts...)
	// Pending announcements finish before the store is closed.
	a.closers = append([]io.Closer{a.gate}, a.closers...)
	return a, nil
}

func newStore(cfg config.Config, a *app) (storage.Store, error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		a.closers = append(a.closers, client)
		return storage.NewRedisStore(client, cfg.Cache.Redis.Key, cfg.Cache.Redis.TTL), nil
	default:
		store, err := storage.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		return store, nil
	}
}

func newScraper(cfg config.Config, log *logger.Logger) (*scraper.Scraper, error) {
	validator := filter.NewValidator(cfg.Extraction.Vocabulary)
	extractor, err := extract.New(cfg.Site.URL, extract.Options{
		LocationPatterns: cfg.Extraction.LocationPatterns,
		Defaults:         cfg.Extraction.Defaults,
		TitleCheck:       validator.Valid,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing extractor: %w", err)
	}

	var source scraper.PageSource
	switch cfg.Fetcher.Type {
	case config.FetcherColly:
		source = scraper.NewCollySource(cfg.Site.UserAgent, cfg.Site.Timeout)
	default:
		source = scraper.NewHTTPSource(cfg.Site.UserAgent, cfg.Site.Timeout)
	}

	return scraper.New(scraper.Config{
		URL:          cfg.Site.URL,
		ExpectedHost: cfg.Site.ExpectedHost,
		Timeout:      cfg.Site.Timeout,
		Mode:         scraper.Mode(cfg.Extraction.Mode),
		Strategies:   cfg.Extraction.Strategies,
		Source:       source,
		Validator:    validator,
		Extractor:    extractor,
		Logger:       log,
	})
}

func newNotifier(cfg config.Config, out io.Writer) (notifier.Notifier, error) {
	switch cfg.Notify.Type {
	case config.NotifyDryRun:
		return notifier.NewDryRunNotifier(out, cfg.Notify.MaxTitles), nil
	case config.NotifyTwitter:
		n, err := notifier.NewTwitterNotifier(cfg.Notify.MaxTitles)
		if err != nil {
			return nil, fmt.Errorf("initializing twitter notifier: %w", err)
		}
		return n, nil
	case config.NotifyTelegram:
		n, err := notifier.NewTelegramNotifier(cfg.Notify.MaxTitles, cfg.Site.URL)
		if err != nil {
			return nil, fmt.Errorf("initializing telegram notifier: %w", err)
		}
		return n, nil
	default:
		return nil, nil
	}
}
