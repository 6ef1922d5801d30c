package hostcalendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/events"
)

const (
	blockRangeKey   = "hostcalendar.block"
	unblockRangeKey = "hostcalendar.unblock"
)

// BlockRangeCommand closes dates for one listing or, with an empty
// ListingID, for every listing.
type BlockRangeCommand struct {
	ListingID string
	Start     string `validate:"required"`
	End       string `validate:"required"`
	Reason    string `validate:"max=200"`
}

func (c BlockRangeCommand) Key() string { return blockRangeKey }

type UnblockRangeCommand struct {
	RangeID string `validate:"required"`
}

func (c UnblockRangeCommand) Key() string { return unblockRangeKey }

type BlockedRangesHandler struct {
	UoWFactory  uow.UoWFactory
	Policy      policies.Calendar
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	IDGenerator func() string
}

func (h *BlockedRangesHandler) Block() commands.Handler[BlockRangeCommand, *dto.BlockedRangeResult] {
	return commands.HandlerFunc[BlockRangeCommand, *dto.BlockedRangeResult](h.block)
}

func (h *BlockedRangesHandler) Unblock() commands.Handler[UnblockRangeCommand, *dto.Deleted] {
	return commands.HandlerFunc[UnblockRangeCommand, *dto.Deleted](h.unblock)
}

func (h *BlockedRangesHandler) block(ctx context.Context, cmd BlockRangeCommand) (*dto.BlockedRangeResult, error) {
	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	listingID := strings.TrimSpace(cmd.ListingID)
	var listing *listings.Listing
	if listingID != "" {
		if listing, err = unit.Listings().ByID(ctx, listings.ListingID(listingID)); err != nil {
			return nil, err
		}
	}
	loc := h.Policy.Location(listing)
	start, err := parseRequired(cmd.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := parseRequired(cmd.End, loc)
	if err != nil {
		return nil, err
	}

	now := h.Policy.Now()
	r, err := availability.NewBlockedRange(availability.NewBlockedRangeParams{
		ID:        newID(h.IDGenerator, "br_"),
		ListingID: listingID,
		Start:     start,
		End:       end,
		Reason:    cmd.Reason,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.BlockedRanges().Save(ctx, r); err != nil {
		return nil, err
	}
	evs := []events.DomainEvent{availability.RangeBlockedEvent(r, now)}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	return &dto.BlockedRangeResult{RangeID: r.ID}, nil
}

func (h *BlockedRangesHandler) unblock(ctx context.Context, cmd UnblockRangeCommand) (*dto.Deleted, error) {
	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	r, err := unit.BlockedRanges().ByID(ctx, cmd.RangeID)
	if err != nil {
		return nil, err
	}
	if err := unit.BlockedRanges().Delete(ctx, r.ID); err != nil {
		return nil, err
	}
	now := h.Policy.Now()
	evs := []events.DomainEvent{availability.RangeUnblockedEvent(r, now)}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	return &dto.Deleted{ID: r.ID, DeletedAt: now.UTC()}, nil
}

// ErrInvalidDate is returned for host input that is not a calendar date.
var ErrInvalidDate = errors.New("hostcalendar: invalid date")

// parseRequired is strict: host configuration must not silently drop a date.
func parseRequired(raw string, loc *time.Location) (calendardate.Date, error) {
	d := handlersupport.ParseDay(raw, loc)
	if !d.Valid() {
		return calendardate.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}

func newID(gen func() string, prefix string) string {
	if gen != nil {
		return gen()
	}
	return prefix + uuid.NewString()
}
