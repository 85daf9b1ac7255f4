package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bookshelf/internal/books"
	resp "bookshelf/internal/lib/api/response"
	sl "bookshelf/internal/lib/logger"
	"bookshelf/internal/middleware/authn"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type BookDeleter interface {
	DeleteBook(ctx context.Context, ownerID, bookID int64) error
}

func New(
	log *slog.Logger,
	deleter BookDeleter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.remove.New"

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

		bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Book not found"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.DeleteBook(ctx, userID, bookID); err != nil {
			if errors.Is(err, books.ErrBookNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Book not found"))

				return
			}
			if errors.Is(err, books.ErrNotOwner) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Not authorized"))

				return
			}

			log.Error("failed to delete book", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Server error"))

			return
		}

		render.JSON(w, r, resp.Response{Msg: "Book removed"})
	}
}
