package availability

import (
	"time"

	"staybook/internal/domain/shared/calendardate"
)

type RangeBlocked struct {
	RangeID   string            `json:"range_id"`
	ListingID string            `json:"listing_id,omitempty"`
	Scope     Scope             `json:"scope"`
	Start     calendardate.Date `json:"start"`
	End       calendardate.Date `json:"end"`
	Reason    string            `json:"reason,omitempty"`
	At        time.Time         `json:"at"`
}

func (e RangeBlocked) EventName() string         { return "calendar.blocked" }
func (e RangeBlocked) AggregateID() string       { return e.RangeID }
func (e RangeBlocked) OccurredAt() time.Time     { return e.At }
func (e RangeBlocked) CalendarListingID() string { return e.ListingID }

type RangeUnblocked struct {
	RangeID   string    `json:"range_id"`
	ListingID string    `json:"listing_id,omitempty"`
	Scope     Scope     `json:"scope"`
	At        time.Time `json:"at"`
}

func (e RangeUnblocked) EventName() string         { return "calendar.unblocked" }
func (e RangeUnblocked) AggregateID() string       { return e.RangeID }
func (e RangeUnblocked) OccurredAt() time.Time     { return e.At }
func (e RangeUnblocked) CalendarListingID() string { return e.ListingID }

func RangeBlockedEvent(r BlockedRange, at time.Time) RangeBlocked {
	return RangeBlocked{RangeID: r.ID, ListingID: r.ListingID, Scope: r.Scope, Start: r.Start, End: r.End, Reason: r.Reason, At: at.UTC()}
}

func RangeUnblockedEvent(r BlockedRange, at time.Time) RangeUnblocked {
	return RangeUnblocked{RangeID: r.ID, ListingID: r.ListingID, Scope: r.Scope, At: at.UTC()}
}
