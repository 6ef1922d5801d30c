package availability

import (
	"time"

	"staybook/internal/domain/shared/calendardate"
)

const DefaultCutoffHour = 18

// LeadTime decides the earliest bookable check-in. Before the cutoff hour the
// earliest day is tomorrow; at or after it, the day after tomorrow. A cutoff
// of 0 is midnight, so every booking needs two days' notice. Hours outside
// 0..23 fall back to DefaultCutoffHour.
type LeadTime struct {
	CutoffHour int
	Location   *time.Location
}

func (p LeadTime) DaysAhead(now time.Time) int {
	cutoff := p.CutoffHour
	if cutoff < 0 || cutoff > 23 {
		cutoff = DefaultCutoffHour
	}
	if now.In(p.location()).Hour() >= cutoff {
		return 2
	}
	return 1
}

func (p LeadTime) MinAllowedDate(now time.Time) calendardate.Date {
	return calendardate.Today(now, p.location()).AddDays(p.DaysAhead(now))
}

func (p LeadTime) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
