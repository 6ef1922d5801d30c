package middleware

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
)

// ErrInvalidMessage wraps failures reported by a message's own Check.
var ErrInvalidMessage = errors.New("middleware: invalid message")

// Validator checks bus messages before they reach a handler.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// SelfChecking messages carry rules that span several fields.
type SelfChecking interface {
	Check() error
}

func validate(ctx context.Context, v Validator, message any) error {
	if err := v.Validate(ctx, message); err != nil {
		return err
	}
	if sc, ok := message.(SelfChecking); ok {
		if err := sc.Check(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
		}
	}
	return nil
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := validate(ctx, v, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := validate(ctx, v, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
