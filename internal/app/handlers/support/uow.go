package support

import (
	"context"

	"staybook/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit in ctx or opens a read-only one. The
// returned cleanup is nil when the unit was borrowed.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	return unit, execCtx, func() { _ = unit.Rollback(execCtx) }, nil
}

// WriteUnit is a unit that the handler either borrowed from the transaction
// middleware or opened itself.
type WriteUnit struct {
	uow.UnitOfWork
	Ctx       context.Context
	managed   bool
	committed bool
}

// BeginWriteUnit returns the unit in ctx, or opens one the caller must
// Finish.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (*WriteUnit, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{UnitOfWork: unit, Ctx: ctx}, nil
	}
	if factory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &WriteUnit{UnitOfWork: unit, Ctx: uow.Bind(ctx, unit), managed: true}, nil
}

// Commit commits only a self-managed unit.
func (w *WriteUnit) Commit() error {
	if !w.managed || w.committed {
		return nil
	}
	if err := w.UnitOfWork.Commit(w.Ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// Close rolls back a self-managed unit that was never committed.
func (w *WriteUnit) Close() {
	if w.managed && !w.committed {
		_ = w.UnitOfWork.Rollback(w.Ctx)
	}
}
