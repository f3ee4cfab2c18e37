// Package api serves the cached events over HTTP.
//
// Routes:
//
//	GET  /api/events               today's events, running the pipeline when needed
//	GET  /api/events/health        gate state and the last run's diagnostics
//	POST /api/events/refresh       discard the cache and run the pipeline
//	GET  /api/events/calendar.ics  today's events as iCalendar
//	GET  /metrics                  Prometheus metrics
package api
