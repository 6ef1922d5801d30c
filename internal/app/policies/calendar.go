package policies

import (
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/calendardate"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant; used by tests and fixtures.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Calendar resolves the host-local inputs the checker needs: the lead-time
// window and the host's check-in/out times.
type Calendar struct {
	Clock           Clock
	DefaultLocation *time.Location
	CutoffHour      int
}

func (p Calendar) Now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock.Now()
}

// Location is the listing's own timezone or the configured host default.
func (p Calendar) Location(l *listings.Listing) *time.Location {
	def := p.DefaultLocation
	if def == nil {
		def = time.UTC
	}
	return l.Location(def)
}

func (p Calendar) LeadTime(l *listings.Listing) availability.LeadTime {
	return availability.LeadTime{CutoffHour: p.CutoffHour, Location: p.Location(l)}
}

func (p Calendar) MinAllowed(l *listings.Listing) calendardate.Date {
	return p.LeadTime(l).MinAllowedDate(p.Now())
}

// Today is the current civil date at the listing.
func (p Calendar) Today(l *listings.Listing) calendardate.Date {
	return calendardate.Today(p.Now(), p.Location(l))
}

func HostTimes(l *listings.Listing) availability.HostTimes {
	if l == nil {
		return availability.HostTimes{}
	}
	return availability.HostTimes{CheckIn: l.CheckInTime, CheckOut: l.CheckOutTime}
}
