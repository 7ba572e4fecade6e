package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/webutil"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth validates the x-auth-token header and injects the user id
// into the request context.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(webutil.HeaderAuthToken))
			if token == "" {
				webutil.WriteError(w, r, apperr.New(apperr.KindNoToken, "No token, authorization denied"))
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				if !apperr.Is(err, apperr.KindTokenExpired) && !apperr.Is(err, apperr.KindInvalidToken) {
					err = apperr.Wrap(apperr.KindInvalidToken, "Token is not valid", err)
				}
				webutil.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id, or "" outside RequireAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
