// Package event provides the event record, its sentinel defaults, and the daily
// cache snapshot shared by the scraper, the cache gate, and the storage backends.
//
// Records are identified by a SHA1 key over their normalized title, which is also
// the key used to collapse duplicates found by different extraction strategies.
package event
