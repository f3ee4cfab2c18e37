// Package scraper turns a fetched events page into a validated, deduplicated event list.
//
// A Scraper fetches the page through a PageSource (plain HTTP or a colly
// collector), guards against redirects to another host, runs an ordered list of
// extraction strategies (structured data, a "today's events" section, data
// attributes, class-name patterns, free-text lines and tables/lists), validates
// and deduplicates the candidates and falls back to a fixed list when nothing
// survives. Strategies run in first-match or comprehensive mode.
//
// Failures never abort a run. Fetch errors trigger the fallback list and
// per-item parse errors are collected into the strategy's result; both are
// reported in the run's Diagnostics.
package scraper
