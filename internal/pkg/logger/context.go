package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	stageKey     contextKey = "stage"
)

// WithContext returns a logger carrying the request id and pipeline stage found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	fields := make([]zap.Field, 0, 2)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if stage := GetStage(ctx); stage != "" {
		fields = append(fields, zap.String("stage", stage))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// FromContext returns the logger stored in ctx, or the global one, enriched with ctx fields
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l.WithContext(ctx)
	}
	return L().WithContext(ctx)
}

// ToContext stores l in ctx
func ToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithStage tags ctx with the pipeline stage currently running
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetStage extracts the pipeline stage from context
func GetStage(ctx context.Context) string {
	stage, _ := ctx.Value(stageKey).(string)
	return stage
}
