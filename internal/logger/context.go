package logger

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	contextKey struct{}
	fieldsKey  struct{}
)

// ToContext returns a copy of ctx carrying the provided logger.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx or the global logger.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return global
	}

	if l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}

	return global
}

// WithName appends a name segment to the context logger.
func WithName(ctx context.Context, name string) context.Context {
	return ToContext(ctx, FromContext(ctx).Named(name))
}

// WithKV attaches key-value pairs to every message logged through the returned context,
// including the outputs added later by WithFile.
func WithKV(ctx context.Context, kvs ...any) context.Context {
	ctx = context.WithValue(ctx, fieldsKey{}, append(slices.Clone(boundKVs(ctx)), kvs...))

	return ToContext(ctx, FromContext(ctx).With(kvs...))
}

// WithLevel returns a context whose logger drops messages below level. The
// shared level is left alone: without a logger in ctx a console logger is
// created for the context, otherwise the stored logger can only be restricted.
func WithLevel(ctx context.Context, level zapcore.Level) context.Context {
	l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger)
	if !ok || l == nil {
		return ToContext(ctx, New(zap.NewAtomicLevelAt(level)))
	}

	if level <= l.Level() {
		return ctx
	}

	return ToContext(ctx, l.WithOptions(zap.IncreaseLevel(level)))
}

func boundKVs(ctx context.Context) []any {
	kvs, _ := ctx.Value(fieldsKey{}).([]any)

	return kvs
}
