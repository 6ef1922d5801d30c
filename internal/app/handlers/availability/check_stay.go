package availability

import (
	"context"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
)

const checkStayKey = "availability.check_stay"

type CheckStayQuery struct {
	ListingID string `validate:"required"`
	CheckIn   string
	CheckOut  string
}

func (q CheckStayQuery) Key() string { return checkStayKey }

type CheckStayHandler struct {
	UoWFactory uow.UoWFactory
	Snapshots  *snapshot.Cache
	Policy     policies.Calendar
}

func (h *CheckStayHandler) Handle(ctx context.Context, q CheckStayQuery) (dto.Availability, error) {
	v, err := loadView(ctx, h.UoWFactory, h.Snapshots, h.Policy, q.ListingID)
	if err != nil {
		return dto.Availability{}, err
	}
	in, out := handlersupport.ParseDay(q.CheckIn, v.loc), handlersupport.ParseDay(q.CheckOut, v.loc)
	if err := handlersupport.CheckStayLength(v.listing, daterange.StayRange{CheckIn: in, CheckOut: out}); err != nil {
		return dto.Availability{}, err
	}
	return v.check(in, out), nil
}

func (v view) check(in, out calendardate.Date) dto.Availability {
	stay := daterange.StayRange{CheckIn: in, CheckOut: out}
	decision := domainavailability.IsBookable(domainavailability.Request{
		ListingID:  string(v.listing.ID),
		Range:      stay,
		Existing:   v.snap.Existing,
		Blocked:    v.snap.Blocked,
		MinAllowed: v.minAllowed,
		Host:       v.host,
	})
	res := dto.MapDecision(string(v.listing.ID), in, out, stay.Nights(), decision)
	res.Degraded = v.snap.Degraded
	return res
}

var _ queries.Handler[CheckStayQuery, dto.Availability] = (*CheckStayHandler)(nil)
