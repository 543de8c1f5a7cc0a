package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// nop is returned when a context carries no logger, so pipeline code can log
// unconditionally.
var nop = zap.NewNop()

// ContextWithLogger stores a logger in the context. Request middleware uses
// it to carry the request-scoped logger down to the handlers.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the logger stored by ContextWithLogger, or a no-op
// logger when there is none.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return nop
}
