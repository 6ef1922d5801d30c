package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type result struct {
	N int `json:"n"`
}

type bookCmd struct {
	key   string
	check error
}

func (c bookCmd) Key() string            { return "test.book" }
func (c bookCmd) IdempotencyKey() string { return c.key }
func (c bookCmd) ResultPrototype() any   { return &result{} }
func (c bookCmd) Check() error           { return c.check }

type otherCmd struct{ key string }

func (c otherCmd) Key() string            { return "test.other" }
func (c otherCmd) IdempotencyKey() string { return c.key }
func (c otherCmd) ResultPrototype() any   { return &result{} }

type counter struct {
	calls int
	err   error
}

func (c *counter) bus() commands.Bus {
	return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
		c.calls++
		if c.err != nil {
			return nil, c.err
		}
		return &result{N: c.calls}, nil
	})
}

type passValidator struct{}

func (passValidator) Validate(context.Context, any) error { return nil }

func TestValidationRunsSelfCheck(t *testing.T) {
	c := &counter{}
	bus := Validation(passValidator{})(c.bus())
	_, err := bus.Dispatch(context.Background(), bookCmd{check: errors.New("year without month")})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("err = %v, want ErrInvalidMessage", err)
	}
	if c.calls != 0 {
		t.Fatalf("handler must not run on invalid input")
	}
	if _, err := bus.Dispatch(context.Background(), bookCmd{}); err != nil || c.calls != 1 {
		t.Fatalf("valid command rejected: %v", err)
	}
}

type mapStore struct {
	items map[string]IdempotencyRecord
	fail  error
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	if s.fail != nil {
		return s.fail
	}
	s.items[rec.Key] = rec
	return nil
}

func TestIdempotencyReplaysFirstSuccess(t *testing.T) {
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	c := &counter{}
	bus := Idempotency(store, nil, time.Hour, quiet)(c.bus())
	ctx := context.Background()

	first, err := commands.Dispatch[bookCmd, *result](ctx, bus, bookCmd{key: "k"})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	again, err := commands.Dispatch[bookCmd, *result](ctx, bus, bookCmd{key: "k"})
	if err != nil || again.N != first.N || c.calls != 1 {
		t.Fatalf("replay = %+v, %v (calls=%d)", again, err, c.calls)
	}

	if _, err := bus.Dispatch(ctx, otherCmd{key: "k"}); !errors.Is(err, ErrIdempotencyKeyReused) {
		t.Fatalf("err = %v, want ErrIdempotencyKeyReused", err)
	}

	if _, err := bus.Dispatch(ctx, bookCmd{}); err != nil || c.calls != 2 {
		t.Fatalf("commands without a key always run")
	}
}

func TestIdempotencySkipsFailuresAndSaveErrors(t *testing.T) {
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	c := &counter{err: errors.New("boom")}
	bus := Idempotency(store, nil, 0, quiet)(c.bus())
	if _, err := bus.Dispatch(context.Background(), bookCmd{key: "k"}); err == nil {
		t.Fatalf("expected handler error")
	}
	if len(store.items) != 0 {
		t.Fatalf("failures must not be stored")
	}

	c.err = nil
	store.fail = errors.New("store down")
	res, err := bus.Dispatch(context.Background(), bookCmd{key: "k"})
	if err != nil || res == nil {
		t.Fatalf("a save failure must not hide a committed result: %v", err)
	}
}

type flushBox struct {
	flushes int
	err     error
}

func (b *flushBox) Add(context.Context, outbox.EventRecord) error { return nil }
func (b *flushBox) Flush(context.Context) error {
	b.flushes++
	return b.err
}

func TestOutboxFlushOnlyAfterSuccess(t *testing.T) {
	box := &flushBox{}
	c := &counter{err: errors.New("rejected")}
	bus := OutboxFlush(box, quiet)(c.bus())
	if _, err := bus.Dispatch(context.Background(), bookCmd{}); err == nil || box.flushes != 0 {
		t.Fatalf("failed command must not flush (flushes=%d)", box.flushes)
	}
	c.err = nil
	box.err = errors.New("broker down")
	if res, err := bus.Dispatch(context.Background(), bookCmd{}); err != nil || res == nil || box.flushes != 1 {
		t.Fatalf("flush error must be swallowed after commit: res=%v err=%v", res, err)
	}
}

type fakeUnit struct {
	committed, rolledBack int
}

func (u *fakeUnit) Listings() listings.Repository                      { return nil }
func (u *fakeUnit) Bookings() booking.Repository                       { return nil }
func (u *fakeUnit) BlockedRanges() availability.BlockedRangeRepository { return nil }
func (u *fakeUnit) PriceRules() pricing.RuleRepository                 { return nil }
func (u *fakeUnit) Commit(context.Context) error                       { u.committed++; return nil }
func (u *fakeUnit) Rollback(context.Context) error                     { u.rolledBack++; return nil }

type fakeFactory struct {
	units []*fakeUnit
}

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	factory := &fakeFactory{}
	c := &counter{}
	var seen uow.UnitOfWork
	inner := commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
		seen, _ = uow.FromContext(ctx)
		return c.bus().Dispatch(ctx, cmd)
	})
	bus := Transaction(factory, nil)(inner)

	if _, err := bus.Dispatch(context.Background(), bookCmd{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(factory.units) != 1 || factory.units[0].committed != 1 || factory.units[0].rolledBack != 0 {
		t.Fatalf("unit not committed: %+v", factory.units)
	}
	if seen != factory.units[0] {
		t.Fatalf("handler should see the unit in its context")
	}

	c.err = errors.New("conflict")
	if _, err := bus.Dispatch(context.Background(), bookCmd{}); err == nil {
		t.Fatalf("expected error")
	}
	if u := factory.units[1]; u.committed != 0 || u.rolledBack != 1 {
		t.Fatalf("failed command should roll back: %+v", u)
	}

	c.err = nil
	outer := &fakeUnit{}
	ctx := uow.Bind(context.Background(), outer)
	if _, err := bus.Dispatch(ctx, bookCmd{}); err != nil || len(factory.units) != 2 {
		t.Fatalf("a unit already in context must be reused")
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	c := &counter{}
	bus := ChainCommands(c.bus(), tag("a"), nil, tag("b"))
	if _, err := bus.Dispatch(context.Background(), bookCmd{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order = %v", order)
	}
}
