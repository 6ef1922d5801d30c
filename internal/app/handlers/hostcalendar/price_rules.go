package hostcalendar

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/events"
)

const (
	setPriceRuleKey    = "hostcalendar.set_price_rule"
	deletePriceRuleKey = "hostcalendar.delete_price_rule"
)

type SetPriceRuleCommand struct {
	ListingID    string `validate:"required"`
	Start        string `validate:"required"`
	End          string `validate:"required"`
	NightlyPrice int64  `validate:"required,gt=0"`
}

func (c SetPriceRuleCommand) Key() string { return setPriceRuleKey }

type DeletePriceRuleCommand struct {
	RuleID string `validate:"required"`
}

func (c DeletePriceRuleCommand) Key() string { return deletePriceRuleKey }

// PriceRulesHandler stores host price overrides. Overlaps are allowed; the
// newest rule wins when they are expanded.
type PriceRulesHandler struct {
	UoWFactory  uow.UoWFactory
	Policy      policies.Calendar
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	IDGenerator func() string
}

func (h *PriceRulesHandler) Set() commands.Handler[SetPriceRuleCommand, *dto.PriceRuleResult] {
	return commands.HandlerFunc[SetPriceRuleCommand, *dto.PriceRuleResult](h.set)
}

func (h *PriceRulesHandler) Delete() commands.Handler[DeletePriceRuleCommand, *dto.Deleted] {
	return commands.HandlerFunc[DeletePriceRuleCommand, *dto.Deleted](h.delete)
}

func (h *PriceRulesHandler) set(ctx context.Context, cmd SetPriceRuleCommand) (*dto.PriceRuleResult, error) {
	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	listing, err := unit.Listings().ByID(ctx, listings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
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
	rule, err := pricing.NewRule(pricing.NewRuleParams{
		ID:           newID(h.IDGenerator, "pr_"),
		ListingID:    string(listing.ID),
		Start:        start,
		End:          end,
		NightlyPrice: cmd.NightlyPrice,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.PriceRules().Save(ctx, rule); err != nil {
		return nil, err
	}
	evs := []events.DomainEvent{pricing.RuleSetEvent(rule)}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	return &dto.PriceRuleResult{RuleID: rule.ID}, nil
}

func (h *PriceRulesHandler) delete(ctx context.Context, cmd DeletePriceRuleCommand) (*dto.Deleted, error) {
	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	rule, err := unit.PriceRules().ByID(ctx, cmd.RuleID)
	if err != nil {
		return nil, err
	}
	if err := unit.PriceRules().Delete(ctx, rule.ID); err != nil {
		return nil, err
	}
	now := h.Policy.Now()
	evs := []events.DomainEvent{pricing.RuleDeletedEvent(rule, now)}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	return &dto.Deleted{ID: rule.ID, DeletedAt: now.UTC()}, nil
}
