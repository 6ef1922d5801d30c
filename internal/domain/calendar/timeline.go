package calendar

import (
	"sort"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/shared/calendardate"
)

type BarKind string

const (
	BarBooking BarKind = "booking"
	BarBlocked BarKind = "blocked"
)

type TimelineBooking struct {
	ID       string
	CheckIn  calendardate.Date
	CheckOut calendardate.Date
	Status   string
	Label    string
}

type TimelineListing struct {
	ID       string
	Title    string
	Bookings []TimelineBooking
}

type TimelineInput struct {
	From     calendardate.Date
	Days     int
	Listings []TimelineListing
	Blocked  []availability.BlockedRange
}

// Bar is one span on a timeline row. Offset and Span count days from the
// window start; ClippedLeft/Right mark spans that continue past the window.
type Bar struct {
	Kind         BarKind           `json:"kind"`
	ID           string            `json:"id"`
	Start        calendardate.Date `json:"start"`
	End          calendardate.Date `json:"end"`
	Offset       int               `json:"offset"`
	Span         int               `json:"span"`
	ClippedLeft  bool              `json:"clipped_left,omitempty"`
	ClippedRight bool              `json:"clipped_right,omitempty"`
	Status       string            `json:"status,omitempty"`
	Label        string            `json:"label,omitempty"`
}

type TimelineRow struct {
	ListingID string `json:"listing_id"`
	Title     string `json:"title"`
	Bars      []Bar  `json:"bars"`
}

// BuildTimeline projects bookings and blocked ranges onto a window of Days
// days starting at From. A booking occupies its nights, so its last day is
// the day before checkout. Blocked ranges are inclusive.
func BuildTimeline(in TimelineInput) []TimelineRow {
	if !in.From.Valid() || in.Days <= 0 {
		return nil
	}
	last := in.From.AddDays(in.Days - 1)
	rows := make([]TimelineRow, 0, len(in.Listings))
	for _, l := range in.Listings {
		row := TimelineRow{ListingID: l.ID, Title: l.Title, Bars: []Bar{}}
		for _, b := range l.Bookings {
			if !b.CheckIn.Valid() || !b.CheckOut.After(b.CheckIn) {
				continue
			}
			bar, ok := clip(in.From, last, b.CheckIn, b.CheckOut.AddDays(-1))
			if !ok {
				continue
			}
			bar.Kind, bar.ID, bar.Status, bar.Label = BarBooking, b.ID, b.Status, b.Label
			row.Bars = append(row.Bars, bar)
		}
		for _, r := range in.Blocked {
			if !r.AppliesTo(l.ID) {
				continue
			}
			bar, ok := clip(in.From, last, r.Start, r.End)
			if !ok {
				continue
			}
			bar.Kind, bar.ID, bar.Label = BarBlocked, r.ID, r.Reason
			row.Bars = append(row.Bars, bar)
		}
		sort.SliceStable(row.Bars, func(i, j int) bool {
			if row.Bars[i].Offset != row.Bars[j].Offset {
				return row.Bars[i].Offset < row.Bars[j].Offset
			}
			return row.Bars[i].ID < row.Bars[j].ID
		})
		rows = append(rows, row)
	}
	return rows
}

func clip(from, last, start, end calendardate.Date) (Bar, bool) {
	if !start.Valid() || !end.Valid() || end.Before(start) {
		return Bar{}, false
	}
	if end.Before(from) || start.After(last) {
		return Bar{}, false
	}
	bar := Bar{Start: start, End: end}
	if start.Before(from) {
		bar.Start, bar.ClippedLeft = from, true
	}
	if end.After(last) {
		bar.End, bar.ClippedRight = last, true
	}
	bar.Offset = from.DaysUntil(bar.Start)
	bar.Span = bar.Start.DaysUntil(bar.End) + 1
	return bar, true
}
