package logging

import (
	"context"

	"go.uber.org/zap"
)

type scopeKey struct{}

// requestScope is what RequestLogger stores on the request context.
type requestScope struct {
	logger        *zap.Logger
	correlationID string
}

func scopeFrom(ctx context.Context) (requestScope, bool) {
	if ctx == nil {
		return requestScope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(requestScope)
	return s, ok
}

// withScope returns ctx carrying logger and correlationID. A nil logger keeps
// the one already in ctx; an empty correlationID keeps the existing ID.
func withScope(ctx context.Context, logger *zap.Logger, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	s, _ := scopeFrom(ctx)
	if logger != nil {
		s.logger = logger
	}
	if correlationID != "" {
		s.correlationID = correlationID
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// LoggerFromContext returns the request logger, or the global logger outside
// a request.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if s, ok := scopeFrom(ctx); ok && s.logger != nil {
		return s.logger
	}
	return Logger()
}

// CorrelationID returns the Cloud Trace resource or request ID attached to ctx.
func CorrelationID(ctx context.Context) (string, bool) {
	s, ok := scopeFrom(ctx)
	if !ok || s.correlationID == "" {
		return "", false
	}
	return s.correlationID, true
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError logs at error level, adding err as the "error" field when non-nil.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	LoggerFromContext(ctx).Error(msg, fields...)
}
