package snapshot

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
)

// Snapshot is the calendar state of one listing at FetchedAt.
type Snapshot struct {
	ListingID string
	Existing  []availability.ExistingBooking
	Blocked   []availability.BlockedRange
	Rules     []pricing.Rule
	FetchedAt time.Time
	// Degraded is set when a fetch failed and the missing part was
	// replaced by "no constraints known".
	Degraded bool
}

// Fetch loads every part of a snapshot. With strict set the first error is
// returned; otherwise failed parts are left empty and the snapshot is marked
// degraded, with the joined errors returned alongside.
func Fetch(ctx context.Context, src Source, listingID string, strict bool, now time.Time) (Snapshot, error) {
	snap := Snapshot{ListingID: listingID, FetchedAt: now}
	var errs []error

	existing, err := src.BookingsForListing(ctx, listingID)
	if err != nil {
		if strict {
			return Snapshot{}, err
		}
		errs = append(errs, err)
	}
	blocked, err := src.BlockedRanges(ctx, listingID)
	if err != nil {
		if strict {
			return Snapshot{}, err
		}
		errs = append(errs, err)
	}
	rules, err := src.PriceRules(ctx, listingID)
	if err != nil {
		if strict {
			return Snapshot{}, err
		}
		errs = append(errs, err)
	}

	snap.Existing = existing
	snap.Blocked = blocked
	snap.Rules = rules
	snap.Degraded = len(errs) > 0
	return snap, errors.Join(errs...)
}

// OverridesBetween expands the price rules over the inclusive window only.
func (s Snapshot) OverridesBetween(from, to calendardate.Date) pricing.Overrides {
	return pricing.ExpandRules(s.Rules, from, to)
}

// OverridesFor covers the nights of a stay.
func (s Snapshot) OverridesFor(stay daterange.StayRange) pricing.Overrides {
	if stay.Validate() != nil {
		return pricing.Overrides{}
	}
	return s.OverridesBetween(stay.CheckIn, stay.CheckOut.AddDays(-1))
}
