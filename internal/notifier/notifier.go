package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// TweetLimit is the maximum length of a tweet in characters.
const TweetLimit = 280

// DefaultMaxTitles is how many events a digest lists before summarizing the rest.
const DefaultMaxTitles = 5

// Notifier defines the interface for announcing a freshly scraped event list
type Notifier interface {
	// Notify announces the given events
	Notify(events []*event.Event) error
}

// FormatDigest builds the announcement for events, listing at most maxTitles of
// them and keeping the result within limit characters.
func FormatDigest(events []*event.Event, maxTitles, limit int) string {
	if maxTitles <= 0 {
		maxTitles = DefaultMaxTitles
	}

	var b strings.Builder
	noun := "events"
	if len(events) == 1 {
		noun = "event"
	}
	fmt.Fprintf(&b, "📅 Today at UCF: %d %s\n\n", len(events), noun)

	for i, evt := range events {
		if i == maxTitles {
			fmt.Fprintf(&b, "+%d more\n", len(events)-maxTitles)
			break
		}
		b.WriteString("• " + evt.Title)
		if evt.Time != "" && evt.Time != event.DefaultTime {
			b.WriteString(" (" + evt.Time + ")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n#UCF #KnightsEvents")

	return truncate(b.String(), limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
