package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongHost reports a page that resolved to a host other than the expected one.
	ErrWrongHost = errors.New("page resolved to unexpected host")
	// ErrUnexpectedStatus reports a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// FetchError wraps any failure to obtain the events page.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports one item a strategy could not interpret.
type ParseError struct {
	Strategy string
	Item     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Strategy, e.Item, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
