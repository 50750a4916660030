package backend

import "context"

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx. The HTTP middleware
// sets it once per request; ContextTokenSource reads it back when the client
// builds outbound requests.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached to ctx, if any.
func TokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok {
		return tok
	}
	return ""
}

// ContextTokenSource is the TokenSource used by the gateway: per-request
// tokens carried on the context.
func ContextTokenSource(ctx context.Context) string {
	return TokenFromContext(ctx)
}
