// Package authn is the request gate in front of every protected route. It
// pulls a bearer token out of the request, verifies it and puts the
// resolved user id into the request context.
package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "bookshelf/internal/lib/api/response"
	"bookshelf/internal/lib/jwt"

	"github.com/go-chi/render"
)

type ctxKey struct{}

var userIDKey ctxKey

// New verifies a token taken from the x-auth-token header or from
// "Authorization: Bearer <token>"; the dedicated header wins when both are
// present. Missing and invalid tokens both end in 401, with messages that
// do not reveal why verification failed.
func New(log *slog.Logger, tokenSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("x-auth-token")

			if token == "" {
				authHeader := r.Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					token = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}

			if token == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("No token, authorization denied"))

				return
			}

			userID, err := jwt.ParseToken(token, tokenSecret)
			if err != nil {
				log.Warn("token rejected")

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Token is not valid"))

				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// UserID returns the identity the gate attached to the context.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
