package booking

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
)

type BookingRequested struct {
	BookingID BookingID           `json:"booking_id"`
	ListingID listings.ListingID  `json:"listing_id"`
	GuestID   string              `json:"guest_id"`
	Range     daterange.StayRange `json:"range"`
	Guests    int                 `json:"guests"`
	Total     int64               `json:"total"`
	Currency  string              `json:"currency"`
	At        time.Time           `json:"at"`
}

func (e BookingRequested) EventName() string         { return "booking.requested" }
func (e BookingRequested) AggregateID() string       { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time     { return e.At }
func (e BookingRequested) CalendarListingID() string { return string(e.ListingID) }

type BookingConfirmed struct {
	BookingID BookingID           `json:"booking_id"`
	ListingID listings.ListingID  `json:"listing_id"`
	Range     daterange.StayRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e BookingConfirmed) EventName() string         { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string       { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time     { return e.At }
func (e BookingConfirmed) CalendarListingID() string { return string(e.ListingID) }

type BookingDeclined struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	Reason    string             `json:"reason,omitempty"`
	At        time.Time          `json:"at"`
}

func (e BookingDeclined) EventName() string         { return "booking.declined" }
func (e BookingDeclined) AggregateID() string       { return string(e.BookingID) }
func (e BookingDeclined) OccurredAt() time.Time     { return e.At }
func (e BookingDeclined) CalendarListingID() string { return string(e.ListingID) }

type BookingCancelled struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	Reason    string             `json:"reason,omitempty"`
	At        time.Time          `json:"at"`
}

func (e BookingCancelled) EventName() string         { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string       { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time     { return e.At }
func (e BookingCancelled) CalendarListingID() string { return string(e.ListingID) }
