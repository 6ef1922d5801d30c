package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"staybook/internal/app/middleware"
)

var ErrValidation = errors.New("validation failed")

// FieldError names one failing field and the rule it broke.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Error lists every failing field; errors.Is(err, ErrValidation) holds.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrValidation }

// Validator adapts go-playground/validator to the bus middleware port.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(ctx context.Context, message any) error {
	err := v.v.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// Non-struct messages carry no tags.
			return nil
		}
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

var _ middleware.Validator = (*Validator)(nil)
