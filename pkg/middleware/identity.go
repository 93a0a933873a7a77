package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	visitorIDKey contextKey = "visitor_id"
)

// Header names carrying caller identity, set by the authenticating proxy.
const (
	HeaderUserID    = "X-User-Id"
	HeaderVisitorID = "X-Visitor-Id"
)

// Identity extracts caller identity headers into the request context.
// Requests with neither header proceed as anonymous guests.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if id := r.Header.Get(HeaderUserID); id != "" {
			ctx = context.WithValue(ctx, userIDKey, id)
		}
		if id := r.Header.Get(HeaderVisitorID); id != "" {
			ctx = context.WithValue(ctx, visitorIDKey, id)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id from the context, if present.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// VisitorID returns the guest visitor id from the context, if present.
func VisitorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorIDKey).(string)
	return id, ok && id != ""
}
