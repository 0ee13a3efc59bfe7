package middleware

import "context"

type ctxKey string

const (
	ctxUserIDKey ctxKey = "uid"
	ctxRoleKey   ctxKey = "role"
	ctxSeenKey   ctxKey = "seen-user"
)

// seenUser lets middleware mounted above Auth learn who the caller was.
type seenUser struct{ id string }

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, userID, role string) context.Context {
	if s, ok := ctx.Value(ctxSeenKey).(*seenUser); ok {
		s.id = userID
	}
	ctx = context.WithValue(ctx, ctxUserIDKey, userID)
	return context.WithValue(ctx, ctxRoleKey, role)
}

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(string)
	return v, ok && v != ""
}

func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxRoleKey).(string)
	return v, ok && v != ""
}
