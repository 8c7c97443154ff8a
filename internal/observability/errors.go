package observability

import (
	"context"
	"net/http"

	"calc-engine/internal/handlers"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RecordError centralises request failure handling: records the error on the
// span, increments counter with the operation (plus any extra attributes),
// logs with trace context and writes the JSON error response. Client errors
// log at warn, everything else at error.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName, msg string, err error, status int, w http.ResponseWriter, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	attrs = append([]attribute.KeyValue{attribute.String("operation", opName)}, attrs...)
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))

	fields := []zap.Field{
		zap.String("operation", opName),
		zap.Int("status", status),
		zap.Error(err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	}
	if status < http.StatusInternalServerError {
		logger.Warn(msg, fields...)
	} else {
		logger.Error(msg, fields...)
	}

	handlers.WriteError(w, status, msg)
}
