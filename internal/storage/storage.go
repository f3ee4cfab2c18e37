package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// DefaultDataDir is where FileStore keeps its cache unless configured otherwise.
const DefaultDataDir = "~/.local/share/campus-events"

const cacheFileName = "events_cache.json"

// Store persists the daily snapshot.
type Store interface {
	// Load returns the stored snapshot, or nil if none exists.
	Load(ctx context.Context) (*event.Snapshot, error)
	Save(ctx context.Context, snap *event.Snapshot) error
	// Clear removes the stored snapshot. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a FileStore rooted at dataDir, creating the directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{dataDir: dataDir}, nil
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, cacheFileName)
}

// Load reads the snapshot from disk
func (s *FileStore) Load(_ context.Context) (*event.Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return decode(data)
}

// Save writes the snapshot to a temporary file and renames it into place so
// readers never observe a partial write.
func (s *FileStore) Save(_ context.Context, snap *event.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Clear deletes the snapshot file.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

func decode(data []byte) (*event.Snapshot, error) {
	var snap event.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Events == nil {
		snap.Events = make([]*event.Event, 0)
	}
	return &snap, nil
}
