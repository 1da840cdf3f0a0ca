package cont

import "context"

type contextKey string

const principalKey contextKey = "principal"

// PutPrincipal stores the authenticated api key owner in the request
// context.
func PutPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal returns the authenticated api key owner, or "" when
// the request was not authenticated.
func GetPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey).(string)
	return principal
}
