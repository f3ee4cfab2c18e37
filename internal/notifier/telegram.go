package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/campus-events/internal/event"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	telegramTimeout    = 10 * time.Second

	// MessageLimit is Telegram's maximum message length in characters.
	MessageLimit = 4096
)

// TelegramNotifier sends the daily digest to a Telegram chat
type TelegramNotifier struct {
	baseURL    string
	botToken   string
	chatID     string
	maxTitles  int
	eventsURL  string
	httpClient *http.Client
}

// NewTelegramNotifier creates a notifier from the TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID environment variables.
func NewTelegramNotifier(maxTitles int, eventsURL string) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithToken(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"), maxTitles, eventsURL)
}

// NewTelegramNotifierWithToken creates a notifier for an explicit bot token and chat.
func NewTelegramNotifierWithToken(botToken, chatID string, maxTitles int, eventsURL string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &TelegramNotifier{
		baseURL:    telegramAPIBaseURL,
		botToken:   botToken,
		chatID:     chatID,
		maxTitles:  maxTitles,
		eventsURL:  eventsURL,
		httpClient: &http.Client{Timeout: telegramTimeout},
	}, nil
}

// Notify sends one HTML digest message for the events
func (n *TelegramNotifier) Notify(events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}
	return n.send(FormatHTMLDigest(events, n.maxTitles, n.eventsURL))
}

func (n *TelegramNotifier) send(text string) error {
	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

// FormatHTMLDigest formats events as a Telegram HTML message, listing at most
// maxTitles of them. User-supplied text is escaped.
func FormatHTMLDigest(events []*event.Event, maxTitles int, eventsURL string) string {
	if maxTitles <= 0 {
		maxTitles = DefaultMaxTitles
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "📅 <b>Today at UCF</b> • %d event%s\n\n", len(events), pluralize(len(events)))

	for i, evt := range events {
		if i == maxTitles {
			fmt.Fprintf(&msg, "  <i>+%d more</i>\n", len(events)-maxTitles)
			break
		}
		title := html.EscapeString(evt.Title)
		if evt.Link != "" {
			title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(evt.Link), title)
		}
		msg.WriteString("  • " + title)
		if evt.Time != "" && evt.Time != event.DefaultTime {
			msg.WriteString(" (" + html.EscapeString(evt.Time) + ")")
		}
		if evt.Location != "" && evt.Location != event.DefaultLocation {
			msg.WriteString(" - " + html.EscapeString(evt.Location))
		}
		msg.WriteString("\n")
	}

	if eventsURL != "" {
		fmt.Fprintf(&msg, "\n🔗 <b>Calendar:</b> %s", html.EscapeString(eventsURL))
	}

	return truncate(msg.String(), MessageLimit)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
