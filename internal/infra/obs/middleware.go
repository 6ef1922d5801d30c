package obs

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceParent = "traceparent"
	HeaderTraceState  = "tracestate"
)

var traceContext = propagation.TraceContext{}

type Middleware struct {
	Logger *slog.Logger
}

// RequestID propagates or assigns a request id and exposes it on the
// request context, the gin context and the response.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(ContextWithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// TraceContext adopts an incoming W3C trace context as the remote parent of
// the request, so events recorded while serving it carry the same trace.
// Malformed headers are ignored.
func (m Middleware) TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := traceContext.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			c.Request = c.Request.WithContext(ctx)
			c.Set("trace_id", sc.TraceID().String())
		}
		c.Next()
	}
}

// AccessLog writes one line per request; 5xx responses log at error level.
func (m Middleware) AccessLog() gin.HandlerFunc {
	log := m.Logger
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		}
		if traceID := c.GetString("trace_id"); traceID != "" {
			attrs = append(attrs, "trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "err", c.Errors.String())
		}
		log.Log(c.Request.Context(), level, "http", attrs...)
	}
}

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
