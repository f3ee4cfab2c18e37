package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/campus-events/internal/event"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	x, err := New("https://events.ucf.edu", Options{
		LocationPatterns: []string{`\bThe Venue\b`, `\bStudent Union\b`, `\bRoom \d+\b`, `\bVirtual\b`},
		Defaults:         event.StandardDefaults(),
		TitleCheck: func(s string) bool {
			return len(strings.Fields(s)) >= 2 && strings.Contains(strings.ToLower(s), "workshop")
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return x
}

func fragment(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc.Find("body")
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	if _, err := New("/events", Options{}); err == nil {
		t.Error("New() with relative base URL should fail")
	}
	if _, err := New("https://events.ucf.edu", Options{LocationPatterns: []string{"("}}); err == nil {
		t.Error("New() with invalid location pattern should fail")
	}
}

func TestTime(t *testing.T) {
	x := newTestExtractor(t)
	tests := []struct {
		text  string
		want  string
		found bool
	}{
		{"Robotics Workshop at 6:00 PM in the Union", "6:00 PM", true},
		{"Meet at 7pm sharp", "7pm", true},
		{"Doors open at 18:30", "18:30", true},
		{"Stargazing at night on the lawn", "night", true},
		{"Book sale at all day", "all day", true},
		{"Career fair 10:00 a.m. to noon", "10:00 a.m.", true},
		{"Concert 9 PM", "9 PM", true},
		{"Starts 14:15", "14:15", true},
		{"Meet at 9:00 or 10 AM", "9:00", true},
		{"No time mentioned here", event.DefaultTime, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := x.Time(tt.text)
			if got != tt.want || found != tt.found {
				t.Errorf("Time(%q) = (%q, %v), want (%q, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestDate(t *testing.T) {
	x := newTestExtractor(t)
	tests := []struct {
		text  string
		want  string
		found bool
	}{
		{"Wednesday, October 15 in the Union", "Wednesday, October 15", true},
		{"Held November 03, 2025 downtown", "November 03, 2025", true},
		{"Due 10/15/2025", "10/15/2025", true},
		{"Starts 2025-10-15", "2025-10-15", true},
		{"Happening today on campus", "today", true},
		{"Oct. 21 lecture", "Oct. 21", true},
		{"Marathon 5 miles", event.DefaultDate, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := x.Date(tt.text)
			if got != tt.want || found != tt.found {
				t.Errorf("Date(%q) = (%q, %v), want (%q, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	x := newTestExtractor(t)
	tests := []struct {
		text  string
		want  string
		found bool
	}{
		{"Workshop at The Venue tonight", "The Venue", true},
		{"Meet in room 204", "room 204", true},
		{"Virtual session", "Virtual", true},
		{"UCF Volleyball Tournament at 6:00 PM - Addition Financial Arena", event.DefaultLocation, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := x.Location(tt.text)
			if got != tt.want || found != tt.found {
				t.Errorf("Location(%q) = (%q, %v), want (%q, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	x := newTestExtractor(t)
	tests := []struct {
		href string
		want string
	}{
		{"/event/123", "https://events.ucf.edu/event/123"},
		{"https://example.com/a", "https://example.com/a"},
		{"HTTP://example.com/b", "HTTP://example.com/b"},
		{"//cdn.ucf.edu/img.png", "https://cdn.ucf.edu/img.png"},
		{"event/9", "https://events.ucf.edu/event/9"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := x.ResolveURL(tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestTitle_Order(t *testing.T) {
	x := newTestExtractor(t)
	tests := []struct {
		name   string
		markup string
		want   string
		found  bool
	}{
		{
			name:   "link first",
			markup: `<div><h3>Resume Workshop Series</h3><a href="/e/1">Python Workshop Night</a></div>`,
			want:   "Python Workshop Night",
			found:  true,
		},
		{
			name:   "invalid link falls to heading",
			markup: `<div><a href="/more">More</a><h3>Resume Workshop Series</h3></div>`,
			want:   "Resume Workshop Series",
			found:  true,
		},
		{
			name:   "emphasis",
			markup: `<div><strong>Welding Workshop Intro</strong><p>details</p></div>`,
			want:   "Welding Workshop Intro",
			found:  true,
		},
		{
			name:   "first line",
			markup: `<div>Pottery Workshop for beginners<br>Bring clay</div>`,
			want:   "Pottery Workshop for beginners",
			found:  true,
		},
		{
			name:   "nothing acceptable",
			markup: `<div><a href="/x">Home</a><p>Menu</p></div>`,
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := x.Title(fragment(t, tt.markup))
			if got != tt.want || found != tt.found {
				t.Errorf("Title() = (%q, %v), want (%q, %v)", got, found, tt.want, tt.found)
			}
		})
	}
}

func TestFragment(t *testing.T) {
	x := newTestExtractor(t)
	sel := fragment(t, `
		<div class="event-card">
			<a href="/event/42"><h3>Resume Workshop</h3></a>
			<img data-src="img/resume.png">
			<p class="event-description">Polish your resume with career services.</p>
			<span>Wednesday, October 15 at 3:00 PM</span>
			<span>Student Union</span>
			<script>var x = "Room 999";</script>
		</div>`)

	evt, ok := x.Fragment(sel)
	if !ok {
		t.Fatal("Fragment() found no title")
	}

	want := event.Event{
		Title:       "Resume Workshop",
		Description: "Polish your resume with career services.",
		Date:        "Wednesday, October 15",
		Time:        "3:00 PM",
		Location:    "Student Union",
		Link:        "https://events.ucf.edu/event/42",
		Image:       "https://events.ucf.edu/img/resume.png",
	}
	if *evt != want {
		t.Errorf("Fragment() = %+v\nwant %+v", *evt, want)
	}
}

func TestFragment_Defaults(t *testing.T) {
	x := newTestExtractor(t)
	evt, ok := x.Fragment(fragment(t, `<div><h4>Soldering Workshop Lab</h4></div>`))
	if !ok {
		t.Fatal("Fragment() found no title")
	}
	if evt.Time != event.DefaultTime || evt.Location != event.DefaultLocation ||
		evt.Date != event.DefaultDate || evt.Description != event.DefaultDescription {
		t.Errorf("Fragment() sentinels = %+v", *evt)
	}
	if evt.Link != "" || evt.Image != "" {
		t.Errorf("Fragment() link/image = %q/%q, want empty", evt.Link, evt.Image)
	}
}

func TestLine_Truncates(t *testing.T) {
	x := newTestExtractor(t)
	line := "Workshop " + strings.Repeat("x", 120)
	evt := x.Line(line)
	if got := len([]rune(evt.Title)); got != MaxTitleLength {
		t.Errorf("title length = %d, want %d", got, MaxTitleLength)
	}
	if !strings.HasSuffix(evt.Title, "...") {
		t.Errorf("title %q should end with ellipsis", evt.Title)
	}
	if evt.Description != line {
		t.Errorf("description should hold the full line")
	}
}

func TestLine_ClockAndDefaultLocation(t *testing.T) {
	x := newTestExtractor(t)
	evt := x.Line("UCF Volleyball Tournament at 6:00 PM - Addition Financial Arena")
	if evt.Time != "6:00 PM" {
		t.Errorf("Time = %q, want 6:00 PM", evt.Time)
	}
	if evt.Location != event.DefaultLocation {
		t.Errorf("Location = %q, want %q", evt.Location, event.DefaultLocation)
	}
	if evt.Description != event.DefaultDescription {
		t.Errorf("Description = %q, want default", evt.Description)
	}
}
