package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nandeesh-nh/lan-chat/internal/auth"
)

type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext returns the token-authenticated username, or ""
// when the request carried no valid token.
func GetUserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

// Authenticator validates bearer session tokens. With required=false a
// missing or bad token just leaves the request unauthenticated; handlers
// still refuse to act on someone else's behalf when a token is present.
func Authenticator(secret string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				if required {
					http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.VerifyToken(token, secret)
			if err != nil {
				if required {
					http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
