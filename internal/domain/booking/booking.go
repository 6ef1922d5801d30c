package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrStayLength      = errors.New("booking: stay length outside listing limits")
)

type BookingID string

type State string

const (
	StatePending   State = "PENDING"
	StateConfirmed State = "CONFIRMED"
	StateDeclined  State = "DECLINED"
	StateCancelled State = "CANCELLED"
)

// Active bookings hold their nights on the calendar.
func (s State) Active() bool {
	return s == StatePending || s == StateConfirmed
}

type Booking struct {
	ID          BookingID
	ListingID   listings.ListingID
	GuestID     string
	Range       daterange.StayRange
	Guests      int
	ExtraGuests int
	Quote       pricing.Quote
	State       State
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID          BookingID
	ListingID   listings.ListingID
	GuestID     string
	Range       daterange.StayRange
	Guests      int
	ExtraGuests int
	Quote       pricing.Quote
	CreatedAt   time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ListingID:   params.ListingID,
		GuestID:     strings.TrimSpace(params.GuestID),
		Range:       params.Range,
		Guests:      params.Guests,
		ExtraGuests: params.ExtraGuests,
		Quote:       params.Quote,
		State:       StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{
		BookingID: b.ID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		Range:     b.Range,
		Guests:    b.Guests,
		Total:     b.Quote.Total.Amount,
		Currency:  b.Quote.Total.Currency,
		At:        now,
	})
	return b, nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Decline(reason string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateDeclined
	b.UpdatedAt = now.UTC()
	b.Record(BookingDeclined{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if !b.State.Active() {
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Existing converts the booking into the checker's read model.
func (b *Booking) Existing() availability.ExistingBooking {
	return availability.ExistingBooking{ID: string(b.ID), CheckIn: b.Range.CheckIn, CheckOut: b.Range.CheckOut}
}

// ActiveExisting keeps only bookings that still occupy nights.
func ActiveExisting(bookings []*Booking) []availability.ExistingBooking {
	out := make([]availability.ExistingBooking, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.State.Active() {
			continue
		}
		out = append(out, b.Existing())
	}
	return out
}
