package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"bookshelf/internal/auth"
	resp "bookshelf/internal/lib/api/response"
	sl "bookshelf/internal/lib/logger"
	"bookshelf/internal/middleware/authn"
	"bookshelf/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

// Response exposes the profile fields only. The password hash stays inside
// the service on purpose.
type Response struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserProvider interface {
	User(ctx context.Context, id int64) (models.User, error)
}

func New(
	log *slog.Logger,
	provider UserProvider,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("No token, authorization denied"))

			return
		}

		user, err := provider.User(r.Context(), userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			log.Error("failed to get user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Server error"))

			return
		}

		render.JSON(w, r, Response{Name: user.Name, Email: user.Email})
	}
}
