package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/logger"
	"github.com/pfrederiksen/campus-events/internal/metrics"
	"github.com/pfrederiksen/campus-events/internal/notifier"
	"github.com/pfrederiksen/campus-events/internal/scraper"
	"github.com/pfrederiksen/campus-events/internal/storage"
)

// State is the gate's view of the cache.
type State string

const (
	StateEmpty State = "EMPTY"
	StateFresh State = "FRESH"
	StateStale State = "STALE"
)

// runKey is the single-flight key; there is one pipeline per process.
const runKey = "pipeline"

// ErrNoEvents means the pipeline returned nothing, which the fallback list
// should make impossible.
var ErrNoEvents = errors.New("pipeline returned no events")

// Pipeline produces the day's events.
type Pipeline interface {
	Run(ctx context.Context) *scraper.Result
}

// Gate decides between the cached list and a new pipeline run.
type Gate struct {
	store    storage.Store
	pipeline Pipeline
	notifier notifier.Notifier
	loc      *time.Location
	now      func() time.Time
	log      *logger.Logger

	sf         singleflight.Group
	announcing sync.WaitGroup

	mu         sync.RWMutex
	snap       *event.Snapshot
	lastRun    *scraper.Diagnostics
	persistErr error
	refreshes  int
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLocation sets the time zone whose calendar day decides freshness.
func WithLocation(loc *time.Location) Option {
	return func(g *Gate) { g.loc = loc }
}

// WithNotifier announces each successfully scraped list. Fallback lists are not announced.
func WithNotifier(n notifier.Notifier) Option {
	return func(g *Gate) { g.notifier = n }
}

// WithLogger sets the logger; the package default is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// New creates a Gate and loads any persisted snapshot. A snapshot that cannot
// be loaded is logged and treated as absent.
func New(ctx context.Context, store storage.Store, pipeline Pipeline, opts ...Option) *Gate {
	g := &Gate{
		store:    store,
		pipeline: pipeline,
		loc:      time.Local,
		now:      time.Now,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		g.log.Warn("Ignoring unreadable cache", logger.Fields{"error": err.Error()})
		snap = nil
	}
	g.snap = snap
	if snap != nil {
		metrics.SetCachedEvents(len(snap.Events))
	}

	g.log.Debug("Cache gate ready", logger.Fields{"state": string(g.State())})
	return g
}

func (g *Gate) today() string {
	return g.now().In(g.loc).Format(event.DayLayout)
}

// State reports EMPTY, FRESH or STALE for the current calendar day.
func (g *Gate) State() State {
	g.mu.RLock()
	snap := g.snap
	g.mu.RUnlock()
	return g.stateOf(snap)
}

func (g *Gate) stateOf(snap *event.Snapshot) State {
	switch {
	case snap == nil:
		return StateEmpty
	case snap.FreshOn(g.today()):
		return StateFresh
	default:
		return StateStale
	}
}

// GetEvents returns today's events, running the pipeline when the cache is
// empty or stale. The returned slice is shared and must not be modified.
func (g *Gate) GetEvents(ctx context.Context) ([]*event.Event, error) {
	snap, err := g.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Events, nil
}

// GetSnapshot is GetEvents with the cache metadata.
func (g *Gate) GetSnapshot(ctx context.Context) (*event.Snapshot, error) {
	g.mu.RLock()
	snap := g.snap
	g.mu.RUnlock()

	state := g.stateOf(snap)
	metrics.CacheRequest(string(state))
	if state == StateFresh {
		return snap, nil
	}
	return g.run(ctx, false)
}

// RefreshEvents discards the cache and runs the pipeline. A refresh arriving
// while a run is in flight shares that run.
func (g *Gate) RefreshEvents(ctx context.Context) ([]*event.Event, error) {
	snap, err := g.run(ctx, true)
	if err != nil {
		return nil, err
	}
	return snap.Events, nil
}

// Snapshot returns the in-memory snapshot without triggering a run. It may be nil or stale.
func (g *Gate) Snapshot() *event.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snap
}

func (g *Gate) run(ctx context.Context, refresh bool) (*event.Snapshot, error) {
	// The run outlives any single caller: others may be waiting on it.
	runCtx := context.WithoutCancel(ctx)

	ch := g.sf.DoChan(runKey, func() (interface{}, error) {
		if !refresh {
			// A run that finished between the caller's check and here already did the work.
			g.mu.RLock()
			snap := g.snap
			g.mu.RUnlock()
			if g.stateOf(snap) == StateFresh {
				return snap, nil
			}
		}
		return g.execute(runCtx, refresh)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*event.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Gate) execute(ctx context.Context, refresh bool) (*event.Snapshot, error) {
	if refresh {
		g.mu.Lock()
		g.snap = nil
		g.refreshes++
		g.mu.Unlock()

		if err := g.store.Clear(ctx); err != nil {
			g.log.Warn("Failed to clear cache before refresh", logger.Fields{"error": err.Error()})
		}
	}

	result := g.pipeline.Run(ctx)
	if result == nil || len(result.Events) == 0 {
		g.log.Error("Pipeline returned no events", nil, ErrNoEvents)
		return nil, ErrNoEvents
	}

	snap := event.NewSnapshot(result.Events, g.now().In(g.loc))
	persistErr := g.store.Save(ctx, snap)

	g.mu.Lock()
	g.snap = snap
	g.lastRun = &result.Diagnostics
	g.persistErr = persistErr
	g.mu.Unlock()

	metrics.SetCachedEvents(len(snap.Events))
	if persistErr != nil {
		metrics.PersistFailed()
		g.log.Warn("Cache persist failed; serving in-memory result", logger.Fields{
			"run_id": result.Diagnostics.RunID,
			"error":  persistErr.Error(),
		})
	}

	g.log.Info("Cache updated", logger.Fields{
		"run_id":    result.Diagnostics.RunID,
		"cached_on": snap.CachedOn,
		"events":    len(snap.Events),
		"fallback":  result.Diagnostics.Fallback,
		"refresh":   refresh,
	})

	if g.notifier != nil && !result.Diagnostics.Fallback {
		g.announce(result.Diagnostics.RunID, snap.Events)
	}

	return snap, nil
}

// announce notifies in the background; callers sharing the run get their
// events without waiting on the notifier.
func (g *Gate) announce(runID string, events []*event.Event) {
	g.announcing.Add(1)
	go func() {
		defer g.announcing.Done()
		if err := g.notifier.Notify(events); err != nil {
			g.log.Error("Failed to announce events", logger.Fields{"run_id": runID}, err)
		}
	}()
}

// Close waits for announcements still in progress.
func (g *Gate) Close() error {
	g.announcing.Wait()
	return nil
}

// Status is a point-in-time view of the gate for health reporting.
type Status struct {
	State        State                `json:"state"`
	CachedOn     string               `json:"cached_on,omitempty"`
	CachedAt     *time.Time           `json:"cached_at,omitempty"`
	Events       int                  `json:"events"`
	Refreshes    int                  `json:"refreshes"`
	PersistError string               `json:"persist_error,omitempty"`
	LastRun      *scraper.Diagnostics `json:"last_run,omitempty"`
}

// Status reports the gate's current state.
func (g *Gate) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := Status{
		State:     g.stateOf(g.snap),
		Refreshes: g.refreshes,
		LastRun:   g.lastRun,
	}
	if g.snap != nil {
		cachedAt := g.snap.CachedAt
		st.CachedOn = g.snap.CachedOn
		st.CachedAt = &cachedAt
		st.Events = len(g.snap.Events)
	}
	if g.persistErr != nil {
		st.PersistError = g.persistErr.Error()
	}
	return st
}
