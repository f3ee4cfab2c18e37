package filter

import (
	"strings"
	"testing"

	"github.com/pfrederiksen/campus-events/internal/event"
)

func TestCheck(t *testing.T) {
	v := NewValidator(DefaultVocabulary())

	tests := []struct {
		name       string
		title      string
		wantOK     bool
		wantReason Reason
	}{
		{name: "four characters", title: "Expo", wantReason: ReasonTooShort},
		{name: "empty", title: "   ", wantReason: ReasonTooShort},
		{name: "five characters single token", title: "Games", wantReason: ReasonSingleToken},
		{name: "month and year", title: "October2025", wantReason: ReasonMonthYear},
		{name: "month and year with space", title: "October 2025", wantReason: ReasonMonthYear},
		{name: "calendar grid", title: "SuMTuWThFSa2829301234", wantReason: ReasonCalendarGrid},
		{name: "bare month", title: "September", wantReason: ReasonBareMonth},
		{name: "too long", title: "Student Workshop " + strings.Repeat("a", 90), wantReason: ReasonTooLong},
		{name: "navigation short", title: "Student Login Portal", wantReason: ReasonNavigation},
		{name: "navigation phrase", title: "Log in now", wantReason: ReasonNavigation},
		{name: "navigation in long title", title: "Privacy and Data Workshop for Student Leaders", wantOK: true},
		{name: "no indicator", title: "Welcome to our website", wantReason: ReasonNoIndicator},
		{name: "robotics competition", title: "UCF Robotics Competition", wantOK: true},
		{name: "innovation tournament", title: "Innovation Tournament 2025", wantOK: true},
		{name: "plural indicator", title: "Spring Career Fairs", wantOK: true},
		{name: "surrounding whitespace", title: "   Jazz Ensemble Concert   ", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.Check(tt.title)
			if ok != tt.wantOK {
				t.Fatalf("Check(%q) ok = %v (reason %q), want %v", tt.title, ok, reason, tt.wantOK)
			}
			if reason != tt.wantReason {
				t.Errorf("Check(%q) reason = %q, want %q", tt.title, reason, tt.wantReason)
			}
		})
	}
}

func TestCheck_ShapesBehindLengthRule(t *testing.T) {
	v := NewValidator(DefaultVocabulary())

	// Bare clock times, numbers and day abbreviations are all shorter than the
	// minimum length, so they are rejected before any shape check runs.
	for _, title := range []string{"6:00", "12", "Tu", "Sat"} {
		if v.Valid(title) {
			t.Errorf("Valid(%q) = true, want false", title)
		}
	}
}

func TestCheck_Entities(t *testing.T) {
	vocab := DefaultVocabulary()

	plain := NewValidator(vocab)
	if plain.Valid("UCF AlumKnights Give Together") {
		t.Fatal("title without indicator should be rejected by default vocabulary")
	}

	vocab.Entities = []string{"alumknights"}
	withEntities := NewValidator(vocab)
	if !withEntities.Valid("UCF AlumKnights Give Together") {
		t.Error("configured entity should count as an event indicator")
	}
}

func TestLooksLikeEventLine(t *testing.T) {
	v := NewValidator(DefaultVocabulary())

	tests := []struct {
		line string
		want bool
	}{
		{"UCF Volleyball Tournament at 6:00 PM - Addition Financial Arena", true},
		{"Jazz Concert", true},
		{"Concert", false},
		{"Subscribe to our workshop newsletter", false},
		{"function renderWorkshop() { return 1 }", false},
		{"Various student clubs meet today", true},
		{"Copyright 2025 University of Central Florida student affairs", false},
		{"Nothing interesting happens on this line at all", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := v.LooksLikeEventLine(tt.line); got != tt.want {
				t.Errorf("LooksLikeEventLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	v := NewValidator(DefaultVocabulary())

	events := []*event.Event{
		{Title: "Career Services Workshop: Resume Building"},
		{Title: "October2025"},
		{Title: "Menu"},
		{Title: "UCF Basketball Game vs Rival Team"},
		{Title: "Search Events"},
	}

	kept, rejected := v.Apply(events)

	if len(kept) != 2 {
		t.Fatalf("Apply() kept %d events, want 2", len(kept))
	}
	if kept[0].Title != "Career Services Workshop: Resume Building" || kept[1].Title != "UCF Basketball Game vs Rival Team" {
		t.Errorf("Apply() kept wrong events or order: %q, %q", kept[0].Title, kept[1].Title)
	}
	if rejected[ReasonMonthYear] != 1 {
		t.Errorf("rejected[month_year] = %d, want 1", rejected[ReasonMonthYear])
	}
	if rejected[ReasonTooShort] != 1 {
		t.Errorf("rejected[too_short] = %d, want 1", rejected[ReasonTooShort])
	}
	if rejected[ReasonNavigation] != 1 {
		t.Errorf("rejected[navigation] = %d, want 1", rejected[ReasonNavigation])
	}
}
