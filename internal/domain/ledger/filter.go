package ledger

import (
	"time"

	"stockledger/internal/core/clock"
	"stockledger/internal/core/id"
)

// Filter selects ledger entries. Zero values mean "no restriction".
type Filter struct {
	Item      string
	Warehouse string

	// FromDate and ToDate bound the posting date, both inclusive.
	FromDate *time.Time
	ToDate   *time.Time

	MovementID *id.ID
}

// Bounds converts the inclusive date filters into a half-open
// [from, to) range of posting timestamps.
func (f Filter) Bounds() (from, to *time.Time) {
	if f.FromDate != nil {
		v := clock.StartOfDay(*f.FromDate)
		from = &v
	}
	if f.ToDate != nil {
		v := clock.StartOfDay(*f.ToDate).AddDate(0, 0, 1)
		to = &v
	}
	return from, to
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e Entry) bool {
	if f.Item != "" && e.Item != f.Item {
		return false
	}
	if f.Warehouse != "" && e.Warehouse != f.Warehouse {
		return false
	}
	if f.MovementID != nil && e.MovementID != *f.MovementID {
		return false
	}
	from, to := f.Bounds()
	if from != nil && e.PostedAt.Before(*from) {
		return false
	}
	if to != nil && !e.PostedAt.Before(*to) {
		return false
	}
	return true
}
