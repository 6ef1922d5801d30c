package availability

import (
	"context"
	"time"

	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/calendardate"
)

// view bundles what every read handler of a single listing needs.
type view struct {
	listing    *listings.Listing
	snap       snapshot.Snapshot
	loc        *time.Location
	minAllowed calendardate.Date
	host       domainavailability.HostTimes
}

func loadView(ctx context.Context, factory uow.UoWFactory, cache *snapshot.Cache, policy policies.Calendar, listingID string) (view, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		return view{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, listings.ListingID(listingID))
	if err != nil {
		return view{}, err
	}
	return view{
		listing:    listing,
		snap:       cache.Get(ctx, listingID),
		loc:        policy.Location(listing),
		minAllowed: policy.MinAllowed(listing),
		host:       policies.HostTimes(listing),
	}, nil
}
