// Package contexthelpers carries request-scoped values between middleware and
// handlers without leaking context keys.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const (
	currentUserIDKey contextKey = "currentUserID"
)

// SetCurrentUserID stores the resolved device identity on the request context.
func SetCurrentUserID(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserIDKey, userID))
}

// CurrentUserID returns the device identity resolved by the identity
// middleware, or 0 if the request has none.
func CurrentUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(currentUserIDKey).(int64); ok {
		return id
	}
	return 0
}
