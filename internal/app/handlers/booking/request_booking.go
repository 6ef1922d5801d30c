package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/snapshot"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	ListingID       string `validate:"required"`
	GuestID         string `validate:"required"`
	CheckIn         string `validate:"required"`
	CheckOut        string `validate:"required"`
	Guests          int    `validate:"required,min=1"`
	ExtraGuests     int    `validate:"omitempty,min=0"`
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string            { return requestBookingKey }
func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c RequestBookingCommand) ResultPrototype() any   { return &dto.Booking{} }

// RequestBookingHandler places a pending booking. Unlike the read views it
// re-reads the calendar inside the unit of work and refuses to book when any
// part of it cannot be fetched.
type RequestBookingHandler struct {
	UoWFactory  uow.UoWFactory
	Policy      policies.Calendar
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	IDGenerator func() string
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	listing, err := unit.Listings().ByID(ctx, listings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	loc := h.Policy.Location(listing)
	stay := daterange.StayRange{
		CheckIn:  handlersupport.ParseDay(cmd.CheckIn, loc),
		CheckOut: handlersupport.ParseDay(cmd.CheckOut, loc),
	}

	if stay.Validate() == nil && !listing.StayLengthAllowed(stay.Nights()) {
		return nil, domainbooking.ErrStayLength
	}

	now := h.Policy.Now()
	snap, err := snapshot.Fetch(ctx, snapshot.UnitSource{Unit: unit.UnitOfWork}, cmd.ListingID, true, now)
	if err != nil {
		return nil, fmt.Errorf("booking: calendar unavailable: %w", err)
	}
	decision := domainavailability.IsBookable(domainavailability.Request{
		ListingID:  cmd.ListingID,
		Range:      stay,
		Existing:   snap.Existing,
		Blocked:    snap.Blocked,
		MinAllowed: h.Policy.LeadTime(listing).MinAllowedDate(now),
		Host:       policies.HostTimes(listing),
	})
	if !decision.OK {
		return nil, &domainavailability.UnavailableError{Decision: decision}
	}

	guests := domainpricing.GuestConfig{BaseGuests: listing.BaseGuests, MaxExtraGuests: listing.MaxExtraGuests}
	quote := domainpricing.ComputeTotal(domainpricing.Input{
		Range:                 stay,
		BasePrice:             listing.BaseRate,
		Overrides:             snap.OverridesFor(stay),
		ExtraGuests:           guests.ClampExtraGuests(cmd.ExtraGuests),
		ExtraGuestFeePerNight: listing.ExtraGuestFeePerNight.Amount,
	})

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(h.newID()),
		ListingID:   listing.ID,
		GuestID:     cmd.GuestID,
		Range:       stay,
		Guests:      guests.ClampGuests(cmd.Guests),
		ExtraGuests: quote.ExtraGuests,
		Quote:       quote,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.DrainEvents()); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	res := dto.MapBooking(b)
	return &res, nil
}

func (h *RequestBookingHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return "bk_" + uuid.NewString()
}

var (
	_ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
	_ middleware.IdempotentCommand                          = RequestBookingCommand{}
)
