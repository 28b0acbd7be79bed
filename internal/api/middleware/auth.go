package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/finn/cloud-drive-backend/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	TokenKey  contextKey = "sessionToken"
)

// SessionCookieName carries the bearer token for browser flows. The cookie is
// httpOnly; scripts never see the token.
const SessionCookieName = "session"

// Auth resolves the bearer token (Authorization header first, session cookie
// as fallback) through the session store. Every failure mode returns the same
// generic 401 so the response cannot be used to probe token state.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				unauthenticated(w)
				return
			}

			userID, err := authService.ValidateSession(r.Context(), token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] session validation failed: %v", err)
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken pulls the bearer token from the request. Both transports
// validate identically downstream.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetToken returns the validated bearer token for the request, for handlers
// that need to revoke it.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"kind":"unauthenticated","message":"not authenticated"}}`))
}
