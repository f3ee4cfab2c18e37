package event

import "time"

// DayLayout is the calendar-day format stored in Snapshot.CachedOn.
const DayLayout = "2006-01-02"

// Snapshot is the persisted daily cache entry
type Snapshot struct {
	Events   []*Event  `json:"events"`
	CachedOn string    `json:"cached_on"` // calendar day in the gate's time zone
	CachedAt time.Time `json:"cached_at"`
}

// NewSnapshot creates a snapshot of events captured at the given instant.
// CachedOn is derived from at in at's own location.
func NewSnapshot(events []*Event, at time.Time) *Snapshot {
	if events == nil {
		events = make([]*Event, 0)
	}
	return &Snapshot{
		Events:   events,
		CachedOn: at.Format(DayLayout),
		CachedAt: at,
	}
}

// FreshOn reports whether the snapshot was populated on the given day.
func (s *Snapshot) FreshOn(day string) bool {
	return s != nil && s.CachedOn == day
}

// Day returns midnight of CachedOn in CachedAt's location.
func (s *Snapshot) Day() time.Time {
	y, m, d := s.CachedAt.Date()
	if t, err := time.Parse(DayLayout, s.CachedOn); err == nil {
		y, m, d = t.Date()
	}
	return time.Date(y, m, d, 0, 0, 0, 0, s.CachedAt.Location())
}
