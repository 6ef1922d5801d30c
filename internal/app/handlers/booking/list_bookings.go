package booking

import (
	"context"
	"sort"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	"staybook/internal/domain/listings"
)

const listBookingsKey = "booking.list_for_listing"

type ListBookingsQuery struct {
	ListingID string `validate:"required"`
	// IncludeInactive also returns cancelled and declined bookings.
	IncludeInactive bool
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) ([]dto.Booking, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Listings().ByID(execCtx, listings.ListingID(q.ListingID)); err != nil {
		return nil, err
	}
	items, err := unit.Bookings().ListByListing(execCtx, listings.ListingID(q.ListingID))
	if err != nil {
		return nil, err
	}
	out := make([]dto.Booking, 0, len(items))
	for _, b := range items {
		if !q.IncludeInactive && !b.State.Active() {
			continue
		}
		out = append(out, dto.MapBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckIn != out[j].CheckIn {
			return out[i].CheckIn.Before(out[j].CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

var _ queries.Handler[ListBookingsQuery, []dto.Booking] = (*ListBookingsHandler)(nil)
