package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"staybook/internal/app/commands"
)

// IdempotentCommand is implemented by commands that replay their first
// successful result when retried with the same key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer matching the handler result type.
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Command    string
	Payload    []byte
	OccurredAt time.Time
	ExpiresAt  time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var (
	errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")
	// ErrIdempotencyKeyReused is returned when a key is replayed for a different command.
	ErrIdempotencyKeyReused = errors.New("middleware: idempotency key used by another command")
)

// Idempotency stores successful results only, so a failed attempt may be retried
// with the same key. ttl <= 0 keeps records forever. Failing to store a
// record after the command succeeded is logged, not returned.
func Idempotency(store IdempotencyStore, codec ResultCodec, ttl time.Duration, logger *slog.Logger) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			now := time.Now().UTC()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found && (rec.ExpiresAt.IsZero() || now.Before(rec.ExpiresAt)) {
				if rec.Command != "" && rec.Command != cmd.Key() {
					return nil, ErrIdempotencyKeyReused
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if len(rec.Payload) > 0 {
					if err := codec.Decode(rec.Payload, proto); err != nil {
						return nil, err
					}
				}
				return normalizePrototype(proto), nil
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			record := IdempotencyRecord{Key: key, Command: cmd.Key(), OccurredAt: now}
			if ttl > 0 {
				record.ExpiresAt = now.Add(ttl)
			}
			if result != nil {
				if record.Payload, err = codec.Encode(result); err != nil {
					logger.WarnContext(ctx, "idempotency result not encodable", "key", key, "err", err)
					return result, nil
				}
			}
			if err := store.Save(ctx, record); err != nil {
				logger.WarnContext(ctx, "idempotency record not saved", "key", key, "err", err)
			}
			return result, nil
		})
	}
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
