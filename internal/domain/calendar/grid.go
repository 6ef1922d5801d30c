package calendar

import (
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
)

// FirstWeekday fixes grid columns to start on Monday.
const FirstWeekday = time.Monday

type Cell struct {
	Date        calendardate.Date `json:"date"`
	IsSelected  bool              `json:"is_selected"`
	IsStart     bool              `json:"is_start"`
	IsEnd       bool              `json:"is_end"`
	IsBooked    bool              `json:"is_booked"`
	IsBlocked   bool              `json:"is_blocked"`
	IsBeforeMin bool              `json:"is_before_min"`
	IsDisabled  bool              `json:"is_disabled"`
	Price       int64             `json:"price,omitempty"`
	Overridden  bool              `json:"overridden,omitempty"`
}

// PriceSheet attaches nightly prices to cells when present.
type PriceSheet struct {
	Base      int64
	Overrides pricing.Overrides
}

type MonthInput struct {
	Year       int
	Month      time.Month
	ListingID  string
	Selection  Selection
	Existing   []availability.ExistingBooking
	Blocked    []availability.BlockedRange
	MinAllowed calendardate.Date
	Host       availability.HostTimes
	Prices     *PriceSheet
}

// BuildMonthGrid lays the month out row-major in whole weeks. Padding slots
// before the first and after the last day are nil.
func BuildMonthGrid(in MonthInput) []*Cell {
	first, err := calendardate.New(in.Year, in.Month, 1)
	if err != nil {
		return nil
	}
	days := calendardate.DaysIn(in.Year, in.Month)
	lead := LeadingBlanks(first.Weekday())
	total := lead + days
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	cells := make([]*Cell, total)
	for i := 0; i < days; i++ {
		d := first.AddDays(i)
		cells[lead+i] = buildCell(d, in)
	}
	return cells
}

// DayState evaluates a single day the same way the grid does.
func DayState(d calendardate.Date, in MonthInput) Cell {
	return *buildCell(d, in)
}

func buildCell(d calendardate.Date, in MonthInput) *Cell {
	c := &Cell{Date: d}
	c.IsBeforeMin = in.MinAllowed.Valid() && d.Before(in.MinAllowed)
	_, c.IsBooked = availability.IsDayBooked(d, in.Existing, in.Host)
	_, c.IsBlocked = availability.IsDayBlocked(d, in.Blocked, in.ListingID)
	c.IsDisabled = c.IsBeforeMin || c.IsBooked || c.IsBlocked

	sel := in.Selection
	c.IsSelected = sel.contains(d)
	c.IsStart = sel.Start.Valid() && d == sel.Start
	c.IsEnd = sel.State() == SelectionComplete && d == sel.End

	if in.Prices != nil {
		c.Price, c.Overridden = pricing.PriceFor(d, in.Prices.Base, in.Prices.Overrides)
	}
	return c
}

// LeadingBlanks is the number of empty slots before a month starting on wd.
func LeadingBlanks(wd time.Weekday) int {
	return (int(wd) - int(FirstWeekday) + 7) % 7
}
