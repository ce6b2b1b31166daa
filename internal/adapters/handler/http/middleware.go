package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

type contextKey string

// UserIDKey holds the authenticated user id in the request context.
const UserIDKey contextKey = "userID"

// BearerAuth verifies the Authorization header as an access token and
// stores the user id in the request context.
func BearerAuth(authService ports.AuthService, debug bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, domain.ErrInvalidToken, debug)
				return
			}

			user, err := authService.VerifyAccessToken(r.Context(), token)
			if err != nil {
				writeError(w, err, debug)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func userIDFrom(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(UserIDKey).(string)
	return id, ok && id != ""
}
