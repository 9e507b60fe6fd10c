package contextkeys

// contextKey is private to avoid context key collisions.
type contextKey string

const TraceIDKey contextKey = "trace_id"
const OrderIDKey contextKey = "order_id"
