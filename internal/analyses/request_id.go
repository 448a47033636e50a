package analyses

import "context"

type requestIDKey struct{}

// WithRequestID tags ctx so analysis logs and queue messages carry the id
// of the HTTP request that started them.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// detached keeps the request id (and other values) but drops the request's
// deadline and cancellation, for work that outlives the handler.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
