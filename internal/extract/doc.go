// Package extract pulls individual event fields out of markup fragments and text.
//
// Every extractor returns a best-effort value and a found flag. When nothing
// matches, the value is the configured sentinel (for example "Time TBD") and found
// is false; extractors never fail.
package extract
