package hostcalendar

import (
	"context"
	"sort"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
)

const calendarConfigKey = "hostcalendar.list"

type CalendarConfigQuery struct {
	ListingID string `validate:"required"`
}

func (q CalendarConfigQuery) Key() string { return calendarConfigKey }

// CalendarConfigHandler lists everything a host has configured for a
// listing's calendar. Global ranges are included since they apply too.
type CalendarConfigHandler struct {
	UoWFactory uow.UoWFactory
	Policy     policies.Calendar
}

func (h *CalendarConfigHandler) Handle(ctx context.Context, q CalendarConfigQuery) (dto.CalendarConfig, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarConfig{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	l, err := unit.Listings().ByID(execCtx, listings.ListingID(q.ListingID))
	if err != nil {
		return dto.CalendarConfig{}, err
	}
	blocked, err := unit.BlockedRanges().ForListing(execCtx, q.ListingID)
	if err != nil {
		return dto.CalendarConfig{}, err
	}
	rules, err := unit.PriceRules().ForListing(execCtx, q.ListingID)
	if err != nil {
		return dto.CalendarConfig{}, err
	}
	if blocked == nil {
		blocked = []availability.BlockedRange{}
	}
	if rules == nil {
		rules = []pricing.Rule{}
	}
	sort.Slice(blocked, func(i, j int) bool { return blocked[i].Start.Before(blocked[j].Start) })
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].CreatedAt.Before(rules[j].CreatedAt) })

	return dto.CalendarConfig{
		ListingID:      string(l.ID),
		Title:          l.Title,
		BaseRate:       dto.MapMoney(l.BaseRate),
		BaseGuests:     l.BaseGuests,
		MaxExtraGuests: l.MaxExtraGuests,
		ExtraGuestFee:  dto.MapMoney(l.ExtraGuestFeePerNight),
		CheckInTime:    l.CheckInTime,
		CheckOutTime:   l.CheckOutTime,
		Timezone:       h.Policy.Location(l).String(),
		MinNights:      l.MinNights,
		MaxNights:      l.MaxNights,
		Blocked:        blocked,
		PriceRules:     rules,
		MinAllowed:     h.Policy.MinAllowed(l),
	}, nil
}

var _ queries.Handler[CalendarConfigQuery, dto.CalendarConfig] = (*CalendarConfigHandler)(nil)
