package support

import (
	"strings"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
)

// ParseDay reads a user supplied date in loc. Malformed input is treated as
// no date selected and yields the zero Date.
func ParseDay(raw string, loc *time.Location) calendardate.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return calendardate.Date{}
	}
	d, err := calendardate.ParseIn(raw, loc)
	if err != nil {
		return calendardate.Date{}
	}
	return d
}

// CheckStayLength rejects a well-formed stay longer than the listing allows.
// Malformed ranges pass so the caller can report them as invalid.
func CheckStayLength(l *listings.Listing, stay daterange.StayRange) error {
	if stay.Validate() != nil || l.WithinMaxStay(stay.Nights()) {
		return nil
	}
	return booking.ErrStayLength
}
