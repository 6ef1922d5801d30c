package availability

import (
	"errors"
	"fmt"

	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrTooSoon      = errors.New("availability: check-in is too soon")
	ErrInvalidRange = errors.New("availability: invalid stay range")
	ErrBooked       = errors.New("availability: dates overlap an existing booking")
	ErrBlocked      = errors.New("availability: dates include blocked dates")
)

// ExistingBooking is another party's reservation occupying [CheckIn, CheckOut).
type ExistingBooking struct {
	ID       string            `json:"id"`
	CheckIn  calendardate.Date `json:"check_in"`
	CheckOut calendardate.Date `json:"check_out"`
}

type Reason string

const (
	ReasonNone         Reason = ""
	ReasonTooSoon      Reason = "too_soon"
	ReasonInvalidRange Reason = "invalid_range"
	ReasonBooked       Reason = "booked"
	ReasonBlocked      Reason = "blocked"
)

// Request is a snapshot of everything the checker looks at.
type Request struct {
	ListingID  string
	Range      daterange.StayRange
	Existing   []ExistingBooking
	Blocked    []BlockedRange
	MinAllowed calendardate.Date
	Host       HostTimes
}

type Decision struct {
	OK             bool              `json:"ok"`
	Reason         Reason            `json:"reason,omitempty"`
	Date           calendardate.Date `json:"date,omitzero"`
	MinAllowed     calendardate.Date `json:"min_allowed,omitzero"`
	BookingID      string            `json:"booking_id,omitempty"`
	BlockedRangeID string            `json:"blocked_range_id,omitempty"`
}

func (d Decision) Err() error {
	switch d.Reason {
	case ReasonNone:
		if d.OK {
			return nil
		}
		return ErrInvalidRange
	case ReasonTooSoon:
		return ErrTooSoon
	case ReasonBooked:
		return ErrBooked
	case ReasonBlocked:
		return ErrBlocked
	default:
		return ErrInvalidRange
	}
}

// Message is a short text suitable for showing next to the date picker.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonNone:
		if d.OK {
			return "Dates are available"
		}
		return "Please select a valid date range"
	case ReasonTooSoon:
		return fmt.Sprintf("Bookings must be made in advance; earliest check-in is %s", d.MinAllowed)
	case ReasonBooked:
		return fmt.Sprintf("Selected dates overlap an existing booking on %s", d.Date)
	case ReasonBlocked:
		return fmt.Sprintf("Selected dates include blocked dates (%s)", d.Date)
	default:
		return "Check-out must be after check-in"
	}
}

// IsBookable applies lead time, ordering, booking overlap and blocked dates in that order.
func IsBookable(req Request) Decision {
	r := req.Range
	if !r.CheckIn.Valid() || !r.CheckOut.Valid() {
		return Decision{Reason: ReasonInvalidRange}
	}
	if req.MinAllowed.Valid() && r.CheckIn.Before(req.MinAllowed) {
		return Decision{Reason: ReasonTooSoon, Date: r.CheckIn, MinAllowed: req.MinAllowed}
	}
	if r.Validate() != nil {
		return Decision{Reason: ReasonInvalidRange}
	}

	var decision *Decision
	r.EachNight(func(d calendardate.Date) bool {
		if b, booked := IsDayBooked(d, req.Existing, req.Host); booked {
			decision = &Decision{Reason: ReasonBooked, Date: d, BookingID: b.ID}
			return false
		}
		return true
	})
	if decision != nil {
		return *decision
	}
	r.EachNight(func(d calendardate.Date) bool {
		if b, blocked := IsDayBlocked(d, req.Blocked, req.ListingID); blocked {
			decision = &Decision{Reason: ReasonBlocked, Date: d, BlockedRangeID: b.ID}
			return false
		}
		return true
	})
	if decision != nil {
		return *decision
	}
	return Decision{OK: true}
}

// IsDayBooked reports whether night d is taken. A booking holds
// [CheckIn, CheckOut) and also its checkout day unless host times allow
// a same-day turnover.
func IsDayBooked(d calendardate.Date, existing []ExistingBooking, host HostTimes) (ExistingBooking, bool) {
	if !d.Valid() {
		return ExistingBooking{}, false
	}
	turnover := host.AllowsSameDayTurnover()
	for _, b := range existing {
		if !b.CheckIn.Valid() || !b.CheckOut.Valid() {
			continue
		}
		if !d.Before(b.CheckIn) && d.Before(b.CheckOut) {
			return b, true
		}
		if d == b.CheckOut && !turnover {
			return b, true
		}
	}
	return ExistingBooking{}, false
}

// UnavailableError carries a failed decision through error returns.
type UnavailableError struct {
	Decision Decision
}

func (e *UnavailableError) Error() string { return e.Decision.Message() }
func (e *UnavailableError) Unwrap() error { return e.Decision.Err() }
