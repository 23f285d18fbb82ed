package httpapi

import "context"

type sessionTokenKey struct{}

func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

func SessionTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionTokenKey{}).(string)
	return v, ok && v != ""
}
