package middleware

import (
	"context"
	"net/http"

	"billing-be/internal/auth"
	"billing-be/internal/utils"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	ClaimsKey contextKey = "jwtClaims"
)

// AuthMiddleware rejects requests without a valid bearer token and puts the
// claims on the request context.
func AuthMiddleware(jwtSecret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			utils.WriteJSONError(w, "missing access token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseJWT(jwtSecret, tokenStr)
		if err != nil {
			utils.WriteJSONError(w, "invalid access token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, UserIDKey, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}
