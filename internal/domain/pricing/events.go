package pricing

import (
	"time"

	"staybook/internal/domain/shared/calendardate"
)

type RuleSet struct {
	RuleID       string            `json:"rule_id"`
	ListingID    string            `json:"listing_id"`
	Start        calendardate.Date `json:"start"`
	End          calendardate.Date `json:"end"`
	NightlyPrice int64             `json:"nightly_price"`
	At           time.Time         `json:"at"`
}

func (e RuleSet) EventName() string         { return "pricing.rule_set" }
func (e RuleSet) AggregateID() string       { return e.RuleID }
func (e RuleSet) OccurredAt() time.Time     { return e.At }
func (e RuleSet) CalendarListingID() string { return e.ListingID }

type RuleDeleted struct {
	RuleID    string    `json:"rule_id"`
	ListingID string    `json:"listing_id"`
	At        time.Time `json:"at"`
}

func (e RuleDeleted) EventName() string         { return "pricing.rule_deleted" }
func (e RuleDeleted) AggregateID() string       { return e.RuleID }
func (e RuleDeleted) OccurredAt() time.Time     { return e.At }
func (e RuleDeleted) CalendarListingID() string { return e.ListingID }

func RuleSetEvent(r Rule) RuleSet {
	return RuleSet{RuleID: r.ID, ListingID: r.ListingID, Start: r.Start, End: r.End, NightlyPrice: r.NightlyPrice, At: r.CreatedAt}
}

func RuleDeletedEvent(r Rule, at time.Time) RuleDeleted {
	return RuleDeleted{RuleID: r.ID, ListingID: r.ListingID, At: at.UTC()}
}
