package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/email-builder/internal/auth"
	"github.com/email-builder/internal/logging"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware verifies bearer session tokens.
type AuthMiddleware struct {
	tokens       *auth.TokenManager
	log          logging.Logger
	exposeErrors bool
}

// NewAuthMiddleware creates the middleware. exposeErrors adds the token
// verification error to 401 bodies and is meant for development only.
func NewAuthMiddleware(tokens *auth.TokenManager, log logging.Logger, exposeErrors bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, log: log, exposeErrors: exposeErrors}
}

// Authenticate rejects requests without a valid token before they reach next
// and stores the caller's user id in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			m.log.Debug(r.Context(), "no token provided", "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, errorBody{Message: "Authentication required", Path: r.URL.Path})
			return
		}

		claims, err := m.tokens.Validate(tokenStr)
		if err != nil {
			m.log.Debug(r.Context(), "token verification failed", "path", r.URL.Path, "error", err)
			body := errorBody{Message: "Invalid or expired token"}
			if m.exposeErrors {
				body.Error = err.Error()
			}
			writeJSON(w, http.StatusUnauthorized, body)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
