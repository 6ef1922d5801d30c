package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	"staybook/internal/domain/calendar"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
)

const monthGridKey = "availability.month_grid"

type MonthGridQuery struct {
	ListingID string `validate:"required"`
	Year      int    `validate:"omitempty,min=1970,max=9999"`
	Month     int    `validate:"omitempty,min=1,max=12"`
	CheckIn   string
	CheckOut  string
}

func (q MonthGridQuery) Key() string { return monthGridKey }

// Check rejects a year without a month and the reverse.
func (q MonthGridQuery) Check() error {
	if (q.Year == 0) != (q.Month == 0) {
		return errors.New("year and month must be given together")
	}
	return nil
}

type MonthGridHandler struct {
	UoWFactory uow.UoWFactory
	Snapshots  *snapshot.Cache
	Policy     policies.Calendar
}

func (h *MonthGridHandler) Handle(ctx context.Context, q MonthGridQuery) (dto.MonthGrid, error) {
	v, err := loadView(ctx, h.UoWFactory, h.Snapshots, h.Policy, q.ListingID)
	if err != nil {
		return dto.MonthGrid{}, err
	}
	year, month := q.Year, time.Month(q.Month)
	if year == 0 || month == 0 {
		today := h.Policy.Today(v.listing)
		year, month = today.Year(), today.Month()
	}

	sel := calendar.Selection{Start: handlersupport.ParseDay(q.CheckIn, v.loc), End: handlersupport.ParseDay(q.CheckOut, v.loc)}
	if !sel.Start.Valid() {
		sel = calendar.Selection{}
	}
	var overrides pricing.Overrides
	if first, err := calendardate.New(year, month, 1); err == nil {
		overrides = v.snap.OverridesBetween(first, first.AddDays(calendardate.DaysIn(year, month)-1))
	}
	cells := calendar.BuildMonthGrid(calendar.MonthInput{
		Year:       year,
		Month:      month,
		ListingID:  string(v.listing.ID),
		Selection:  sel,
		Existing:   v.snap.Existing,
		Blocked:    v.snap.Blocked,
		MinAllowed: v.minAllowed,
		Host:       v.host,
		Prices:     &calendar.PriceSheet{Base: v.listing.BaseRate.Amount, Overrides: overrides},
	})
	return dto.MonthGrid{
		ListingID:  string(v.listing.ID),
		Year:       year,
		Month:      int(month),
		Weekdays:   weekdayHeader(),
		MinAllowed: v.minAllowed,
		Selection:  dto.MapSelection(sel),
		Cells:      cells,
		Degraded:   v.snap.Degraded,
	}, nil
}

func weekdayHeader() []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = time.Weekday((int(calendar.FirstWeekday) + i) % 7).String()[:3]
	}
	return out
}

var _ queries.Handler[MonthGridQuery, dto.MonthGrid] = (*MonthGridHandler)(nil)
