package guard

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller's origin address to ctx. The engine
// records it on attempt-log rows and lifecycle events; it is never used for
// authentication decisions.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
