package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/campus-events/internal/event"
)

func sampleSnapshot() *event.Snapshot {
	at := time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)
	evt := &event.Event{
		ID:          event.GenerateID("Robotics Club Meeting"),
		Title:       "Robotics Club Meeting",
		Description: event.DefaultDescription,
		Date:        "Today",
		Time:        "5:00 PM",
		Location:    "Student Union",
		Link:        "https://events.ucf.edu/event/1",
		Source:      "section",
		ScrapedAt:   at,
	}
	return event.NewSnapshot([]*event.Event{evt}, at)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	snap, err := store.Load(ctx)
	if err != nil || snap != nil {
		t.Fatalf("Load() on empty store = (%v, %v), want (nil, nil)", snap, err)
	}

	want := sampleSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.CachedOn != "2025-10-15" || !got.CachedAt.Equal(want.CachedAt) {
		t.Errorf("Load() = %+v", got)
	}
	if len(got.Events) != 1 || got.Events[0].Title != "Robotics Club Meeting" {
		t.Errorf("Load() events = %v", got.Events)
	}

	entries, _ := os.ReadDir(filepath.Dir(store.Path()))
	if len(entries) != 1 {
		t.Errorf("data dir has %d entries, want only the cache file", len(entries))
	}
}

func TestFileStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
	if err := store.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if snap, _ := store.Load(ctx); snap != nil {
		t.Errorf("Load() after Clear() = %+v, want nil", snap)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Error("Load() of corrupt file should fail")
	}
}

func TestFileStore_NullEvents(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := []byte(`{"events": null, "cached_on": "2025-10-15", "cached_at": "2025-10-15T08:00:00Z"}`)
	if err := os.WriteFile(store.Path(), data, 0644); err != nil {
		t.Fatal(err)
	}
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Events == nil {
		t.Error("Events should be an empty slice, not nil")
	}
}

func TestNewFileStore_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileStore("~/cache")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if want := filepath.Join(home, "cache", cacheFileName); store.Path() != want {
		t.Errorf("Path() = %q, want %q", store.Path(), want)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if snap, err := store.Load(ctx); snap != nil || err != nil {
		t.Fatalf("Load() on empty store = (%v, %v)", snap, err)
	}
	want := sampleSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Load(ctx); got != want {
		t.Error("Load() should return the saved snapshot")
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Load(ctx); got != nil {
		t.Error("Load() after Clear() should be nil")
	}
}
