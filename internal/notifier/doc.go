// Package notifier announces the day's campus events.
//
// After the cache gate scrapes a new list it hands the events to a Notifier.
// A single digest message is built from the list: a headline, up to a
// configured number of titles with their times, and a count of the rest. The
// dry-run notifier writes the digest to a writer; the Twitter notifier posts it
// as one tweet, truncated to the 280 character limit. The Telegram notifier
// sends an HTML variant with links to a single chat.
package notifier
