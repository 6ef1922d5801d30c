package pricing

import (
	"context"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	"staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

const quoteKey = "pricing.quote"

type QuoteQuery struct {
	ListingID   string `validate:"required"`
	CheckIn     string
	CheckOut    string
	Guests      int `validate:"omitempty,min=0"`
	ExtraGuests int `validate:"omitempty,min=0"`
}

func (q QuoteQuery) Key() string { return quoteKey }

// QuoteHandler prices a stay. Price rules that cannot be fetched fall back to
// the base rate.
type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Snapshots  *snapshot.Cache
	Policy     policies.Calendar
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.Quote, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, listings.ListingID(q.ListingID))
	if err != nil {
		return dto.Quote{}, err
	}
	loc := h.Policy.Location(listing)
	in, out := handlersupport.ParseDay(q.CheckIn, loc), handlersupport.ParseDay(q.CheckOut, loc)
	stay := daterange.StayRange{CheckIn: in, CheckOut: out}
	if err := handlersupport.CheckStayLength(listing, stay); err != nil {
		return dto.Quote{}, err
	}
	snap := h.Snapshots.Get(ctx, q.ListingID)

	guests := GuestConfigFor(listing)
	quote := domainpricing.ComputeTotal(domainpricing.Input{
		Range:                 stay,
		BasePrice:             listing.BaseRate,
		Overrides:             snap.OverridesFor(stay),
		ExtraGuests:           guests.ClampExtraGuests(q.ExtraGuests),
		ExtraGuestFeePerNight: listing.ExtraGuestFeePerNight.Amount,
	})
	res := dto.MapQuote(q.ListingID, guests.ClampGuests(q.Guests), listing.BaseRate, in, out, quote)
	res.Degraded = snap.Degraded
	return res, nil
}

// GuestConfigFor extracts the guest pricing settings of a listing.
func GuestConfigFor(l *listings.Listing) domainpricing.GuestConfig {
	return domainpricing.GuestConfig{
		BaseGuests:            l.BaseGuests,
		MaxExtraGuests:        l.MaxExtraGuests,
		ExtraGuestFeePerNight: l.ExtraGuestFeePerNight.Amount,
	}
}

var _ queries.Handler[QuoteQuery, dto.Quote] = (*QuoteHandler)(nil)
