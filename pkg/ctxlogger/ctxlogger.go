package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// AppendCtx returns a context carrying attr in addition to any attrs
// already appended to ctx.
func AppendCtx(ctx context.Context, attr slog.Attr) context.Context {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		return context.WithValue(ctx, ctxKey{}, append(attrs[:len(attrs):len(attrs)], attr))
	}

	return context.WithValue(ctx, ctxKey{}, []slog.Attr{attr})
}

// ContextHandler decorates a slog.Handler with the attrs appended to the
// record's context via AppendCtx.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		for _, attr := range attrs {
			r.AddAttrs(attr)
		}
	}

	return h.Handler.Handle(ctx, r)
}
