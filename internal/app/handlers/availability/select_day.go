package availability

import (
	"context"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	"staybook/internal/domain/calendar"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

const selectDayKey = "availability.select_day"

// SelectDayQuery applies one click to the caller's picker state. It reads
// only; the caller keeps the returned selection.
type SelectDayQuery struct {
	ListingID   string `validate:"required"`
	Start       string
	End         string
	Day         string `validate:"required"`
	Guests      int    `validate:"omitempty,min=0"`
	ExtraGuests int    `validate:"omitempty,min=0"`
}

func (q SelectDayQuery) Key() string { return selectDayKey }

type SelectDayHandler struct {
	UoWFactory uow.UoWFactory
	Snapshots  *snapshot.Cache
	Policy     policies.Calendar
}

func (h *SelectDayHandler) Handle(ctx context.Context, q SelectDayQuery) (dto.SelectResult, error) {
	v, err := loadView(ctx, h.UoWFactory, h.Snapshots, h.Policy, q.ListingID)
	if err != nil {
		return dto.SelectResult{}, err
	}
	current := calendar.Selection{Start: handlersupport.ParseDay(q.Start, v.loc), End: handlersupport.ParseDay(q.End, v.loc)}
	if !current.Start.Valid() {
		current = calendar.Selection{}
	}
	day := handlersupport.ParseDay(q.Day, v.loc)
	in := calendar.MonthInput{
		ListingID:  string(v.listing.ID),
		Selection:  current,
		Existing:   v.snap.Existing,
		Blocked:    v.snap.Blocked,
		MinAllowed: v.minAllowed,
		Host:       v.host,
	}

	res := dto.SelectResult{Disabled: true}
	if day.Valid() {
		in.Prices = &calendar.PriceSheet{Base: v.listing.BaseRate.Amount, Overrides: v.snap.OverridesBetween(day, day)}
		cell := calendar.DayState(day, in)
		res.Day = cell
		res.Disabled = cell.IsDisabled
	}
	next := current.Click(day, res.Disabled)
	res.Selection = dto.MapSelection(next)

	if next.State() == calendar.SelectionComplete {
		stayRange := daterange.StayRange{CheckIn: next.Start, CheckOut: next.End}
		if err := handlersupport.CheckStayLength(v.listing, stayRange); err != nil {
			return dto.SelectResult{}, err
		}
		stay := v.check(next.Start, next.End)
		res.Stay = &stay
		guests := pricing.GuestConfig{BaseGuests: v.listing.BaseGuests, MaxExtraGuests: v.listing.MaxExtraGuests}
		quote := pricing.ComputeTotal(pricing.Input{
			Range:                 stayRange,
			BasePrice:             v.listing.BaseRate,
			Overrides:             v.snap.OverridesFor(stayRange),
			ExtraGuests:           guests.ClampExtraGuests(q.ExtraGuests),
			ExtraGuestFeePerNight: v.listing.ExtraGuestFeePerNight.Amount,
		})
		mapped := dto.MapQuote(string(v.listing.ID), guests.ClampGuests(q.Guests), v.listing.BaseRate, next.Start, next.End, quote)
		mapped.Degraded = v.snap.Degraded
		res.Quote = &mapped
	}
	return res, nil
}

var _ queries.Handler[SelectDayQuery, dto.SelectResult] = (*SelectDayHandler)(nil)
