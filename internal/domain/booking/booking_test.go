package booking

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
)

func newPending(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:        "bk-1",
		ListingID: "l-1",
		GuestID:   "guest",
		Range:     daterange.StayRange{CheckIn: calendardate.MustParse("2025-05-01"), CheckOut: calendardate.MustParse("2025-05-03")},
		Guests:    2,
		CreatedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	return b
}

func TestNewBookingValidation(t *testing.T) {
	valid := daterange.StayRange{CheckIn: calendardate.MustParse("2025-05-01"), CheckOut: calendardate.MustParse("2025-05-03")}
	if _, err := NewBooking(CreateParams{GuestID: "g", Range: valid}); !errors.Is(err, ErrInvalidGuests) {
		t.Fatalf("expected ErrInvalidGuests, got %v", err)
	}
	if _, err := NewBooking(CreateParams{Guests: 1, Range: valid}); !errors.Is(err, ErrGuestRequired) {
		t.Fatalf("expected ErrGuestRequired, got %v", err)
	}
	if _, err := NewBooking(CreateParams{Guests: 1, GuestID: "g", Range: daterange.StayRange{CheckIn: valid.CheckIn, CheckOut: valid.CheckIn}}); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestBookingLifecycle(t *testing.T) {
	b := newPending(t)
	if evs := b.DrainEvents(); len(evs) != 1 || evs[0].EventName() != "booking.requested" {
		t.Fatalf("expected booking.requested, got %v", evs)
	}
	now := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	if err := b.Confirm(now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := b.Confirm(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double confirm should fail, got %v", err)
	}
	if err := b.Decline("late", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("declining a confirmed booking should fail, got %v", err)
	}
	if err := b.Cancel("plans changed", now); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := b.Cancel("again", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double cancel should fail, got %v", err)
	}
	evs := b.DrainEvents()
	if len(evs) != 2 || evs[1].EventName() != "booking.cancelled" {
		t.Fatalf("unexpected events %v", evs)
	}
}

func TestActiveExisting(t *testing.T) {
	pending := newPending(t)
	cancelled := newPending(t)
	cancelled.ID = "bk-2"
	_ = cancelled.Cancel("", time.Now())
	declined := newPending(t)
	declined.ID = "bk-3"
	_ = declined.Decline("", time.Now())

	got := ActiveExisting([]*Booking{pending, nil, cancelled, declined})
	if len(got) != 1 || got[0].ID != "bk-1" || got[0].CheckOut != pending.Range.CheckOut {
		t.Fatalf("unexpected active bookings %+v", got)
	}
}
