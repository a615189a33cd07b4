package sloghelper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

type ContextKey string

var (
	RequestIDKey  = "poold_request_id"
	LoggerNameKey = "poold_logger_name"
)

const (
	RequestIDContextKey  ContextKey = "RequestIDContextKey"
	LoggerNameContextKey ContextKey = "LoggerNameContextKey"
)

var (
	EventLoopLoggerKey     ContextKey = "EventLoop"
	WorkerClientLoggerKey  ContextKey = "WorkerClient"
	ResultCacheLoggerKey   ContextKey = "ResultCache"
	AuditLoggerKey         ContextKey = "Audit"
	MetricsServerLoggerKey ContextKey = "MetricsServer"
	PoolLoggerKey          ContextKey = "Pool"
	keys                              = []ContextKey{
		EventLoopLoggerKey,
		WorkerClientLoggerKey,
		ResultCacheLoggerKey,
		AuditLoggerKey,
		MetricsServerLoggerKey,
		PoolLoggerKey,
	}
	loggers map[ContextKey]*slog.Logger
	lock    sync.Mutex
)

func init() {
	loggers = make(map[ContextKey]*slog.Logger)

	for _, key := range keys {
		loggers[key] = slog.New(&Handler{Handler: slog.NewJSONHandler(os.Stdout, nil)})
	}
}

// Init seeds ctx with every registered component logger, keyed by its own
// ContextKey, so FromContext further down the call chain finds each one on
// ctx.
func Init(ctx context.Context) context.Context {
	for _, key := range keys {
		if logger, ok := loggers[key]; ok {
			ctx = context.WithValue(ctx, key, logger)
		}
	}
	return ctx
}

func WithValue(ctx context.Context, key ContextKey, val any) context.Context {
	return context.WithValue(ctx, key, val)
}

func WithLoggerName(ctx context.Context, val ContextKey) context.Context {
	return context.WithValue(ctx, LoggerNameContextKey, string(val))
}

// FromContext gets the logger from context, falling back to the package
// registry keyed by component name.
func FromContext(ctx context.Context, key ContextKey) *slog.Logger {
	if ctx == nil {
		panic("nil context")
	}

	if logger, ok := ctx.Value(key).(*slog.Logger); ok {
		return logger
	}

	lock.Lock()
	defer lock.Unlock()

	if _, ok := loggers[key]; !ok {
		loggers[key] = slog.New(&Handler{Handler: slog.NewJSONHandler(os.Stdout, nil)})
		loggers[key].WarnContext(ctx, fmt.Sprintf("logger not found. logger: %s", key))
	}

	return loggers[key]
}

// SetLogger overrides the logger registered for key, e.g. to redirect a
// component's output into an in-memory buffer.
func SetLogger(key ContextKey, logger *slog.Logger) {
	lock.Lock()
	defer lock.Unlock()
	loggers[key] = logger
}
