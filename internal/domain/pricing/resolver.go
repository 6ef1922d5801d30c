package pricing

import (
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// Input is everything ComputeTotal needs; it is never mutated.
type Input struct {
	Range                 daterange.StayRange
	BasePrice             money.Money
	Overrides             Overrides
	ExtraGuests           int
	ExtraGuestFeePerNight int64
}

type Night struct {
	Date       calendardate.Date `json:"date"`
	Price      int64             `json:"price"`
	Overridden bool              `json:"overridden"`
}

type Quote struct {
	Nights      int         `json:"nights"`
	Subtotal    money.Money `json:"subtotal"`
	ExtraGuests int         `json:"extra_guests"`
	ExtraFees   money.Money `json:"extra_fees"`
	Total       money.Money `json:"total"`
	Breakdown   []Night     `json:"breakdown,omitempty"`
}

// ComputeTotal prices every night of the stay, preferring overrides over
// the base rate, and adds the per-night extra guest fee. Invalid or absent
// ranges yield an all-zero quote.
func ComputeTotal(in Input) Quote {
	currency := in.BasePrice.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	zero := money.Zero(currency)
	q := Quote{Subtotal: zero, ExtraFees: zero, Total: zero}

	nights := in.Range.Nights()
	if nights <= 0 {
		return q
	}
	q.Nights = nights
	q.Breakdown = make([]Night, 0, nights)
	var subtotal int64
	in.Range.EachNight(func(d calendardate.Date) bool {
		price, ok := in.Overrides[d]
		if !ok {
			price = in.BasePrice.Amount
		}
		subtotal += price
		q.Breakdown = append(q.Breakdown, Night{Date: d, Price: price, Overridden: ok})
		return true
	})

	extra := in.ExtraGuests
	if extra < 0 {
		extra = 0
	}
	fee := in.ExtraGuestFeePerNight
	if fee < 0 {
		fee = 0
	}
	extraFees := int64(extra) * fee * int64(nights)

	q.ExtraGuests = extra
	q.Subtotal = zero.Plus(subtotal)
	q.ExtraFees = zero.Plus(extraFees)
	q.Total = zero.Plus(subtotal + extraFees)
	return q
}

// PriceFor returns the nightly price of a single day.
func PriceFor(d calendardate.Date, base int64, overrides Overrides) (int64, bool) {
	if p, ok := overrides[d]; ok {
		return p, true
	}
	return base, false
}
