package booking

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const (
	cancelBookingKey  = "booking.cancel"
	confirmBookingKey = "booking.confirm"
	declineBookingKey = "booking.decline"
)

type CancelBookingCommand struct {
	BookingID string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type ConfirmBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type DeclineBookingCommand struct {
	BookingID string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (c DeclineBookingCommand) Key() string { return declineBookingKey }

// TransitionHandler moves an existing booking between states. Cancelling or
// declining frees its nights once the outbox flush evicts the cached calendar.
type TransitionHandler struct {
	UoWFactory uow.UoWFactory
	Policy     policies.Calendar
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *TransitionHandler) Cancel() commands.Handler[CancelBookingCommand, *dto.Booking] {
	return commands.HandlerFunc[CancelBookingCommand, *dto.Booking](func(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
		return h.apply(ctx, cmd.BookingID, func(b *domainbooking.Booking) error {
			return b.Cancel(cmd.Reason, h.Policy.Now())
		})
	})
}

func (h *TransitionHandler) Confirm() commands.Handler[ConfirmBookingCommand, *dto.Booking] {
	return commands.HandlerFunc[ConfirmBookingCommand, *dto.Booking](func(ctx context.Context, cmd ConfirmBookingCommand) (*dto.Booking, error) {
		return h.apply(ctx, cmd.BookingID, func(b *domainbooking.Booking) error {
			return b.Confirm(h.Policy.Now())
		})
	})
}

func (h *TransitionHandler) Decline() commands.Handler[DeclineBookingCommand, *dto.Booking] {
	return commands.HandlerFunc[DeclineBookingCommand, *dto.Booking](func(ctx context.Context, cmd DeclineBookingCommand) (*dto.Booking, error) {
		return h.apply(ctx, cmd.BookingID, func(b *domainbooking.Booking) error {
			return b.Decline(cmd.Reason, h.Policy.Now())
		})
	})
}

func (h *TransitionHandler) apply(ctx context.Context, id string, fn func(*domainbooking.Booking) error) (*dto.Booking, error) {
	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
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
