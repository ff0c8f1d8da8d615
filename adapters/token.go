package adapters

import "context"

type applicationTokenKey struct{}

// ApplicationTokenHeader is the header carrying the application token
// on every delivery request.
const ApplicationTokenHeader = "X-Application-Token"

// WithApplicationToken returns a copy of ctx carrying token. The
// pipeline attaches the session token this way before calling Send.
func WithApplicationToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, applicationTokenKey{}, token)
}

// ApplicationTokenFromContext returns the token attached to ctx, if any.
func ApplicationTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(applicationTokenKey{}).(string)
	return token
}
