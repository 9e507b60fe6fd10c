package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/contextkeys"
)

// FieldsFromContext extracts the request-scoped log fields (trace_id,
// order_id) as zap fields.
func FieldsFromContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if trace, ok := ctx.Value(contextkeys.TraceIDKey).(string); ok && trace != "" {
		fields = append(fields, zap.String("trace_id", trace))
	}
	if orderID, ok := ctx.Value(contextkeys.OrderIDKey).(int64); ok && orderID != 0 {
		fields = append(fields, zap.Int64("order_id", orderID))
	}
	return fields
}

// WithTraceID stores the request trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.TraceIDKey, traceID)
}

// WithOrderID stores the order being processed in the context.
func WithOrderID(ctx context.Context, orderID int64) context.Context {
	if orderID == 0 {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.OrderIDKey, orderID)
}
