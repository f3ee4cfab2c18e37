package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	UserAgent = "campus-events/1.0 (github.com/pfrederiksen/campus-events)"
	Timeout   = 30 * time.Second

	// maxPageSize caps how much of a response body is read.
	maxPageSize = 10 << 20
)

// Page is a fetched document.
type Page struct {
	Body     []byte
	FinalURL string
}

// PageSource fetches the raw markup of a page.
type PageSource interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// HTTPSource fetches pages with net/http.
type HTTPSource struct {
	client    *http.Client
	userAgent string
}

// NewHTTPSource creates a source with the given per-request timeout.
func NewHTTPSource(userAgent string, timeout time.Duration) *HTTPSource {
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch performs a GET and returns the body along with the post-redirect URL.
func (s *HTTPSource) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	return &Page{Body: body, FinalURL: resp.Request.URL.String()}, nil
}

// CollySource fetches pages with a colly collector. A fresh collector is used
// per fetch so repeated visits of the same URL are not suppressed.
type CollySource struct {
	userAgent      string
	timeout        time.Duration
	allowedDomains []string
}

// NewCollySource creates a colly-backed source. allowedDomains may be empty.
func NewCollySource(userAgent string, timeout time.Duration, allowedDomains ...string) *CollySource {
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &CollySource{userAgent: userAgent, timeout: timeout, allowedDomains: allowedDomains}
}

// Fetch visits pageURL and returns the first response.
func (s *CollySource) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	opts := []colly.CollectorOption{colly.UserAgent(s.userAgent)}
	if len(s.allowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(s.allowedDomains...))
	}
	c := colly.NewCollector(opts...)

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	var (
		page     *Page
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		page = &Page{Body: r.Body, FinalURL: r.Request.URL.String()}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 && (r.StatusCode < 200 || r.StatusCode > 299) {
			fetchErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, r.StatusCode)
			return
		}
		fetchErr = err
	})

	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	visitErr := c.Visit(pageURL)
	c.Wait()

	switch {
	case fetchErr != nil:
		return nil, &FetchError{URL: pageURL, Err: fetchErr}
	case visitErr != nil:
		return nil, &FetchError{URL: pageURL, Err: visitErr}
	case page == nil:
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("no response")}
	}
	return page, nil
}

// CheckHost reports ErrWrongHost when finalURL's host differs from expectedHost.
// The comparison ignores case and a leading "www.". An empty expectedHost accepts any host.
func CheckHost(finalURL, expectedHost string) error {
	if expectedHost == "" {
		return nil
	}
	u, err := url.Parse(finalURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongHost, err)
	}
	if normalizeHost(u.Hostname()) != normalizeHost(expectedHost) {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongHost, u.Hostname(), expectedHost)
	}
	return nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}
