package notifier

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// twitterTimeout bounds one status update.
const twitterTimeout = 15 * time.Second

// TwitterNotifier posts the daily digest to Twitter
type TwitterNotifier struct {
	client    *twitter.Client
	maxTitles int
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier(maxTitles int) (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = twitterTimeout
	return NewTwitterNotifierWithClient(httpClient, maxTitles), nil
}

// NewTwitterNotifierWithClient creates a notifier over an already authenticated HTTP client.
func NewTwitterNotifierWithClient(httpClient *http.Client, maxTitles int) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient), maxTitles: maxTitles}
}

// Notify posts one digest tweet for the events
func (n *TwitterNotifier) Notify(events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tweet := FormatDigest(events, n.maxTitles, TweetLimit)
	if _, _, err := n.client.Statuses.Update(tweet, nil); err != nil {
		return fmt.Errorf("failed to post digest tweet: %w", err)
	}
	return nil
}
