package uow

import (
	"context"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
)

// UnitOfWork groups the repositories a calendar operation touches.
type UnitOfWork interface {
	Listings() listings.Repository
	Bookings() booking.Repository
	BlockedRanges() availability.BlockedRangeRepository
	PriceRules() pricing.RuleRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
