// Package storage persists the daily events cache.
//
// A Store owns a single snapshot (events, the day they were cached and the
// capture instant) with Load, Save and Clear operations. Three backends are
// provided: a JSON file under a data directory (default
// ~/.local/share/campus-events/), a Redis key and an in-process value.
//
// Load returns a nil snapshot and nil error when nothing has been stored.
package storage
