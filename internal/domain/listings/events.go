package listings

import (
	"time"
)

type ListingCreatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	HostID    HostID    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingCreatedEvent) EventName() string         { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string       { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time     { return e.At }
func (e ListingCreatedEvent) CalendarListingID() string { return string(e.ListingID) }
