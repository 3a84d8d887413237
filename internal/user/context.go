package user

import "context"

type ctxKey string

const contextUserKey ctxKey = "authUser"

// FromContext returns the authenticated user stored on the request
// context, if any.
func FromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}

func ContextWith(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}
