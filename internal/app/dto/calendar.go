package dto

import (
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/calendar"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
)

type MonthGrid struct {
	ListingID  string            `json:"listing_id"`
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	Weekdays   []string          `json:"weekdays"`
	MinAllowed calendardate.Date `json:"min_allowed"`
	Selection  Selection         `json:"selection"`
	// Cells is row-major, seven per week, with null padding.
	Cells    []*calendar.Cell `json:"cells"`
	Degraded bool             `json:"degraded,omitempty"`
}

type Selection struct {
	Start calendardate.Date       `json:"start,omitzero"`
	End   calendardate.Date       `json:"end,omitzero"`
	State calendar.SelectionState `json:"state"`
}

func MapSelection(s calendar.Selection) Selection {
	return Selection{Start: s.Start, End: s.End, State: s.State()}
}

// SelectResult is the picker state after a click plus, once both ends are
// chosen, the availability and price of the stay.
type SelectResult struct {
	Selection Selection     `json:"selection"`
	Disabled  bool          `json:"disabled"`
	Day       calendar.Cell `json:"day"`
	Stay      *Availability `json:"stay,omitempty"`
	Quote     *Quote        `json:"quote,omitempty"`
}

type Availability struct {
	ListingID      string              `json:"listing_id"`
	CheckIn        calendardate.Date   `json:"check_in,omitzero"`
	CheckOut       calendardate.Date   `json:"check_out,omitzero"`
	Nights         int                 `json:"nights"`
	Bookable       bool                `json:"bookable"`
	Reason         availability.Reason `json:"reason,omitempty"`
	Message        string              `json:"message"`
	Date           calendardate.Date   `json:"date,omitzero"`
	MinAllowed     calendardate.Date   `json:"min_allowed,omitzero"`
	BookingID      string              `json:"booking_id,omitempty"`
	BlockedRangeID string              `json:"blocked_range_id,omitempty"`
	Degraded       bool                `json:"degraded,omitempty"`
}

func MapDecision(listingID string, checkIn, checkOut calendardate.Date, nights int, d availability.Decision) Availability {
	return Availability{
		ListingID:      listingID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Nights:         nights,
		Bookable:       d.OK,
		Reason:         d.Reason,
		Message:        d.Message(),
		Date:           d.Date,
		MinAllowed:     d.MinAllowed,
		BookingID:      d.BookingID,
		BlockedRangeID: d.BlockedRangeID,
	}
}

type Timeline struct {
	From     calendardate.Date      `json:"from"`
	To       calendardate.Date      `json:"to"`
	Days     int                    `json:"days"`
	Rows     []calendar.TimelineRow `json:"rows"`
	Degraded bool                   `json:"degraded,omitempty"`
}

type CalendarConfig struct {
	ListingID      string                      `json:"listing_id"`
	Title          string                      `json:"title"`
	BaseRate       Money                       `json:"base_rate"`
	BaseGuests     int                         `json:"base_guests"`
	MaxExtraGuests int                         `json:"max_extra_guests"`
	ExtraGuestFee  Money                       `json:"extra_guest_fee_per_night"`
	CheckInTime    string                      `json:"check_in_time"`
	CheckOutTime   string                      `json:"check_out_time"`
	Timezone       string                      `json:"timezone"`
	MinNights      int                         `json:"min_nights,omitempty"`
	MaxNights      int                         `json:"max_nights,omitempty"`
	Blocked        []availability.BlockedRange `json:"blocked_ranges"`
	PriceRules     []pricing.Rule              `json:"price_rules"`
	MinAllowed     calendardate.Date           `json:"min_allowed"`
}

type BlockedRangeResult struct {
	RangeID string `json:"range_id"`
}

type PriceRuleResult struct {
	RuleID string `json:"rule_id"`
}

type Deleted struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}
