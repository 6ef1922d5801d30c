package dto

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/calendardate"
)

type Booking struct {
	ID          string            `json:"id"`
	ListingID   string            `json:"listing_id"`
	GuestID     string            `json:"guest_id"`
	CheckIn     calendardate.Date `json:"check_in"`
	CheckOut    calendardate.Date `json:"check_out"`
	Nights      int               `json:"nights"`
	Guests      int               `json:"guests"`
	ExtraGuests int               `json:"extra_guests"`
	State       string            `json:"state"`
	Subtotal    Money             `json:"subtotal"`
	ExtraFees   Money             `json:"extra_fees"`
	Total       Money             `json:"total"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func MapBooking(b *booking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:          string(b.ID),
		ListingID:   string(b.ListingID),
		GuestID:     b.GuestID,
		CheckIn:     b.Range.CheckIn,
		CheckOut:    b.Range.CheckOut,
		Nights:      b.Range.Nights(),
		Guests:      b.Guests,
		ExtraGuests: b.ExtraGuests,
		State:       string(b.State),
		Subtotal:    MapMoney(b.Quote.Subtotal),
		ExtraFees:   MapMoney(b.Quote.ExtraFees),
		Total:       MapMoney(b.Quote.Total),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
