package middleware

import (
	"context"
	"net/http"
)

// Real authentication (JWT issuance, password hashing) lives in front of
// this service. The gateway forwards the validated identity in X-User-ID;
// this middleware only lifts it into the request context.

const headerUserID = "X-User-ID"

type userIDKey struct{}

// Identity rejects requests without a caller identity and stores the user
// ID in the context for handlers and stores.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerUserID)
		if id == "" {
			http.Error(w, `{"error":"missing caller identity"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the caller's user ID, or an empty string when
// the request bypassed the Identity middleware.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
