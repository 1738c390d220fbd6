package middleware

import (
	"context"
	"net/http"
	"strings"

	"teamnet-go/internal/auth"

	"go.uber.org/zap"
)

type contextKey string

const (
	// UserIDKey is the context key holding the authenticated user's id.
	UserIDKey contextKey = "userID"
	// UsernameKey is the context key holding the authenticated username.
	UsernameKey contextKey = "username"
	// ClaimsKey is the context key holding the full JWT claims.
	ClaimsKey contextKey = "claims"
)

// AuthMiddleware validates the Bearer token on every request and injects the
// authenticated identity into the request context.
func AuthMiddleware(jwtKey string, blacklist auth.TokenBlacklist, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Authorization header must be in 'Bearer {token}' format", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(r.Context(), parts[1], jwtKey, blacklist)
			if err != nil {
				logger.Debug("token validation failed", zap.Error(err))
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user id from the context.
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}

// GetClaimsFromContext extracts the full JWT claims from the context.
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}
