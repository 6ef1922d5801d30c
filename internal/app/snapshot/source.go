package snapshot

import (
	"context"
	"fmt"

	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
)

// GlobalScope selects ranges that apply to every listing.
const GlobalScope = "global"

// Source is the booking/calendar data service the resolver reads from.
type Source interface {
	BookingsForListing(ctx context.Context, listingID string) ([]availability.ExistingBooking, error)
	// BlockedRanges returns global ranges for GlobalScope, otherwise the
	// listing's own ranges together with the global ones.
	BlockedRanges(ctx context.Context, scope string) ([]availability.BlockedRange, error)
	PriceRules(ctx context.Context, listingID string) ([]pricing.Rule, error)
}

// UnitSource reads through an open unit of work.
type UnitSource struct {
	Unit uow.UnitOfWork
}

func (s UnitSource) BookingsForListing(ctx context.Context, listingID string) ([]availability.ExistingBooking, error) {
	items, err := s.Unit.Bookings().ListByListing(ctx, listings.ListingID(listingID))
	if err != nil {
		return nil, fmt.Errorf("snapshot: bookings for %s: %w", listingID, err)
	}
	return booking.ActiveExisting(items), nil
}

func (s UnitSource) BlockedRanges(ctx context.Context, scope string) ([]availability.BlockedRange, error) {
	var (
		items []availability.BlockedRange
		err   error
	)
	if scope == GlobalScope || scope == "" {
		items, err = s.Unit.BlockedRanges().Global(ctx)
	} else {
		items, err = s.Unit.BlockedRanges().ForListing(ctx, scope)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: blocked ranges for %s: %w", scope, err)
	}
	return items, nil
}

func (s UnitSource) PriceRules(ctx context.Context, listingID string) ([]pricing.Rule, error) {
	items, err := s.Unit.PriceRules().ForListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: price rules for %s: %w", listingID, err)
	}
	return items, nil
}

// FactorySource opens a read-only unit per call.
type FactorySource struct {
	Factory uow.UoWFactory
}

func (s FactorySource) with(ctx context.Context, fn func(context.Context, UnitSource) error) error {
	unit, err := s.Factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	execCtx := uow.Bind(ctx, unit)
	defer func() { _ = unit.Rollback(execCtx) }()
	return fn(execCtx, UnitSource{Unit: unit})
}

func (s FactorySource) BookingsForListing(ctx context.Context, listingID string) (out []availability.ExistingBooking, err error) {
	err = s.with(ctx, func(ctx context.Context, src UnitSource) error {
		out, err = src.BookingsForListing(ctx, listingID)
		return err
	})
	return out, err
}

func (s FactorySource) BlockedRanges(ctx context.Context, scope string) (out []availability.BlockedRange, err error) {
	err = s.with(ctx, func(ctx context.Context, src UnitSource) error {
		out, err = src.BlockedRanges(ctx, scope)
		return err
	})
	return out, err
}

func (s FactorySource) PriceRules(ctx context.Context, listingID string) (out []pricing.Rule, err error) {
	err = s.with(ctx, func(ctx context.Context, src UnitSource) error {
		out, err = src.PriceRules(ctx, listingID)
		return err
	})
	return out, err
}

var (
	_ Source = UnitSource{}
	_ Source = FactorySource{}
)
