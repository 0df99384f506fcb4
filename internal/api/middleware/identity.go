package middleware

import (
	"context"
	"net/http"

	"github.com/doctrove/doctrove/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserIdentity requires an X-User-ID header on every request and stores the
// value in the request context. Identity arrives from the fronting gateway;
// this service does not authenticate credentials itself.
func UserIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
