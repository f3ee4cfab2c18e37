// Package cache implements the daily cache gate in front of the scrape pipeline.
//
// The gate serves the persisted event list while it was cached on the current
// calendar day (FRESH), and runs the pipeline when nothing is cached (EMPTY) or
// the day has rolled over (STALE). At most one pipeline run is in flight per
// process; concurrent callers share its result. Refresh discards the cache and
// runs the pipeline regardless of state.
//
// Every run is persisted, including runs that ended on the fallback list, so a
// failing site is not retried on every request for the rest of the day.
package cache
