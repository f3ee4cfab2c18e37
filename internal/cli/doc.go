// Package cli implements the command-line interface for campus-events.
//
// The cli package provides the Cobra-based CLI: serve runs the HTTP API,
// events prints today's events (text, JSON or iCalendar, optionally sorted)
// and refresh discards the cache and scrapes again. It wires the config,
// scraper, storage backend, notifier and cache gate for each command.
package cli
