package availability

import (
	"context"
	"log/slog"
	"sort"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	"staybook/internal/domain/calendar"
	"staybook/internal/domain/listings"
)

const (
	timelineKey         = "availability.timeline"
	DefaultTimelineDays = 14
)

type TimelineQuery struct {
	From      string
	Days      int    `validate:"omitempty,min=1,max=92"`
	ListingID string `validate:"omitempty"`
}

func (q TimelineQuery) Key() string { return timelineKey }

// TimelineHandler feeds the admin reservation timeline. It reads the stores
// directly so bars can carry booking status.
type TimelineHandler struct {
	UoWFactory uow.UoWFactory
	Policy     policies.Calendar
	Logger     *slog.Logger
}

func (h *TimelineHandler) Handle(ctx context.Context, q TimelineQuery) (dto.Timeline, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Timeline{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var items []*listings.Listing
	if q.ListingID != "" {
		l, err := unit.Listings().ByID(execCtx, listings.ListingID(q.ListingID))
		if err != nil {
			return dto.Timeline{}, err
		}
		items = []*listings.Listing{l}
	} else if items, err = unit.Listings().List(execCtx); err != nil {
		return dto.Timeline{}, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	from := handlersupport.ParseDay(q.From, h.Policy.Location(nil))
	if !from.Valid() {
		from = h.Policy.Today(nil)
	}
	days := q.Days
	if days <= 0 {
		days = DefaultTimelineDays
	}

	degraded := false
	seen := make(map[string]struct{})
	var blocked []domainavailability.BlockedRange
	addBlocked := func(ranges []domainavailability.BlockedRange) {
		for _, r := range ranges {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			blocked = append(blocked, r)
		}
	}

	rows := make([]calendar.TimelineListing, 0, len(items))
	for _, l := range items {
		row := calendar.TimelineListing{ID: string(l.ID), Title: l.Title}
		bookings, err := unit.Bookings().ListByListing(execCtx, l.ID)
		if err != nil {
			degraded = true
			h.logger().WarnContext(ctx, "timeline bookings unavailable", "listing_id", l.ID, "err", err)
		}
		for _, b := range bookings {
			if !b.State.Active() {
				continue
			}
			row.Bookings = append(row.Bookings, calendar.TimelineBooking{
				ID:       string(b.ID),
				CheckIn:  b.Range.CheckIn,
				CheckOut: b.Range.CheckOut,
				Status:   string(b.State),
				Label:    b.GuestID,
			})
		}
		ranges, err := unit.BlockedRanges().ForListing(execCtx, string(l.ID))
		if err != nil {
			degraded = true
			h.logger().WarnContext(ctx, "timeline blocked ranges unavailable", "listing_id", l.ID, "err", err)
		}
		addBlocked(ranges)
		rows = append(rows, row)
	}

	return dto.Timeline{
		From:     from,
		To:       from.AddDays(days - 1),
		Days:     days,
		Rows:     calendar.BuildTimeline(calendar.TimelineInput{From: from, Days: days, Listings: rows, Blocked: blocked}),
		Degraded: degraded,
	}, nil
}

func (h *TimelineHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ queries.Handler[TimelineQuery, dto.Timeline] = (*TimelineHandler)(nil)
