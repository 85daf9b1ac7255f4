package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	resp "bookshelf/internal/lib/api/response"
	sl "bookshelf/internal/lib/logger"
	"bookshelf/internal/middleware/authn"
	"bookshelf/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type BookLister interface {
	BooksByOwner(ctx context.Context, ownerID int64, filter models.BookFilter) ([]models.Book, error)
}

// New lists the caller's records, newest first. Query parameters: "genre"
// exact match, "search" case-insensitive substring on the title, "_id" a
// single record by id (the edit form fetches one book this way).
func New(
	log *slog.Logger,
	lister BookLister,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.list.New"

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

		filter := models.BookFilter{
			Genre:  r.URL.Query().Get("genre"),
			Search: r.URL.Query().Get("search"),
		}

		if rawID := r.URL.Query().Get("_id"); rawID != "" {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("field _id is not valid"))

				return
			}

			filter.BookID = id
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		books, err := lister.BooksByOwner(ctx, userID, filter)
		if err != nil {
			log.Error("failed to list books", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Server error"))

			return
		}

		render.JSON(w, r, books)
	}
}
