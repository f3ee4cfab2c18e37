package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false, // won't log (below INFO)
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := buf.Len()

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > before
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_EntryFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf)
	logger.out.now = func() time.Time { return time.Date(2025, 10, 15, 8, 30, 0, 0, time.UTC) }

	logger.Error("cache persist failed", Fields{"backend": "file"}, errors.New("disk full"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if entry.Timestamp != "2025-10-15T08:30:00Z" {
		t.Errorf("Timestamp = %q", entry.Timestamp)
	}
	if entry.Level != "ERROR" || entry.Message != "cache persist failed" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Error != "disk full" {
		t.Errorf("Error = %q, want disk full", entry.Error)
	}
	if entry.Fields["backend"] != "file" {
		t.Errorf("Fields = %v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	parent := New(LevelInfo, &buf)
	child := parent.With(Fields{"run_id": "abc", "strategy": "section"})

	child.Info("strategy finished", Fields{"strategy": "tabular", "accepted": 2})
	parent.Info("unrelated", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if entry.Fields["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", entry.Fields["run_id"])
	}
	if entry.Fields["strategy"] != "tabular" {
		t.Errorf("call fields should win, strategy = %v", entry.Fields["strategy"])
	}

	var plain LogEntry
	if err := json.Unmarshal([]byte(lines[1]), &plain); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(plain.Fields) != 0 {
		t.Errorf("parent should not inherit child fields: %v", plain.Fields)
	}
}

func TestDefault(t *testing.T) {
	var buf bytes.Buffer
	original := Default()
	SetDefault(New(LevelWarn, &buf))
	defer SetDefault(original)

	Default().Info("hidden", nil)
	Default().Warn("shown", Fields{"n": 1})

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("got %d lines, want 1: %q", got, buf.String())
	}
	if !Default().Enabled(LevelError) || Default().Enabled(LevelDebug) {
		t.Error("Enabled should follow the minimum level")
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("tick", Fields{"i": i})
		}(i)
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("corrupted line %q: %v", line, err)
		}
	}
}
