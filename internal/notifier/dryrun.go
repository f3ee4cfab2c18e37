package notifier

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// DryRunNotifier prints the digest that would be posted without posting it
type DryRunNotifier struct {
	out       io.Writer
	maxTitles int
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(out io.Writer, maxTitles int) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out, maxTitles: maxTitles}
}

// Notify prints the digest
func (n *DryRunNotifier) Notify(events []*event.Event) error {
	digest := FormatDigest(events, n.maxTitles, TweetLimit)
	_, err := fmt.Fprintf(n.out, "--- Digest (%d events) ---\n%s\n\n(Length: %d characters)\n\n",
		len(events), digest, utf8.RuneCountInString(digest))
	return err
}
