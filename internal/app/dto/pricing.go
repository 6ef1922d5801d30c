package dto

import (
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/money"
)

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(m money.Money) Money {
	return Money{Amount: m.Amount, Currency: m.Currency}
}

type Quote struct {
	ListingID   string            `json:"listing_id"`
	CheckIn     calendardate.Date `json:"check_in,omitzero"`
	CheckOut    calendardate.Date `json:"check_out,omitzero"`
	Guests      int               `json:"guests"`
	ExtraGuests int               `json:"extra_guests"`
	Nights      int               `json:"nights"`
	NightlyBase Money             `json:"nightly_base"`
	Subtotal    Money             `json:"subtotal"`
	ExtraFees   Money             `json:"extra_fees"`
	Total       Money             `json:"total"`
	Breakdown   []pricing.Night   `json:"breakdown"`
	Degraded    bool              `json:"degraded,omitempty"`
}

func MapQuote(listingID string, guests int, base money.Money, checkIn, checkOut calendardate.Date, q pricing.Quote) Quote {
	breakdown := q.Breakdown
	if breakdown == nil {
		breakdown = []pricing.Night{}
	}
	return Quote{
		ListingID:   listingID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      guests,
		ExtraGuests: q.ExtraGuests,
		Nights:      q.Nights,
		NightlyBase: MapMoney(base),
		Subtotal:    MapMoney(q.Subtotal),
		ExtraFees:   MapMoney(q.ExtraFees),
		Total:       MapMoney(q.Total),
		Breakdown:   breakdown,
	}
}
