package sloghelper

import (
	"context"
	"log/slog"
)

// Handler wraps a slog.Handler and stamps the request ID and logger name
// carried on ctx onto every record, so callers never have to pass them as
// explicit attributes at each log call site.
type Handler struct {
	slog.Handler
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if requestID, ok := ctx.Value(RequestIDContextKey).(string); ok {
		record.AddAttrs(slog.String(RequestIDKey, requestID))
	}

	if loggerName, ok := ctx.Value(LoggerNameContextKey).(string); ok {
		record.AddAttrs(slog.String(LoggerNameKey, loggerName))
	}

	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}
