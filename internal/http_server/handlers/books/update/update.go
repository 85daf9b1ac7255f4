package update

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
	"bookshelf/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// Request fields are pointers so an omitted field is distinguishable from
// an explicit zero: omitted means "keep the stored value", while a present
// but out-of-range value (rating 0, say) is a validation error rather than
// a silent no-op. The owner is not part of the request at all.
type Request struct {
	Title  *string `json:"title" validate:"omitempty,min=1"`
	Author *string `json:"author"`
	Genre  *string `json:"genre"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Note   *string `json:"note"`
	Link   *string `json:"link" validate:"omitempty,url"`
}

type BookUpdater interface {
	UpdateBook(ctx context.Context, ownerID, bookID int64, upd books.Update) (models.Book, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	updater BookUpdater,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.update.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		book, err := updater.UpdateBook(ctx, userID, bookID, books.Update{
			Title:  req.Title,
			Author: req.Author,
			Genre:  req.Genre,
			Rating: req.Rating,
			Note:   req.Note,
			Link:   req.Link,
		})
		if err != nil {
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

			log.Error("failed to update book", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Server error"))

			return
		}

		render.JSON(w, r, book)
	}
}
