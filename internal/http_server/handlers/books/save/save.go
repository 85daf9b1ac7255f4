package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "bookshelf/internal/lib/api/response"
	sl "bookshelf/internal/lib/logger"
	"bookshelf/internal/middleware/authn"
	"bookshelf/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Rating int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Note   string `json:"note"`
	Link   string `json:"link" validate:"omitempty,url"`
}

type BookSaver interface {
	AddBook(ctx context.Context, ownerID int64, book models.Book) (models.Book, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	saver BookSaver,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.save.New"

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

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
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

		book, err := saver.AddBook(ctx, userID, models.Book{
			Title:  req.Title,
			Author: req.Author,
			Genre:  req.Genre,
			Rating: req.Rating,
			Note:   req.Note,
			Link:   req.Link,
		})
		if err != nil {
			log.Error("failed to add book", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Server error"))

			return
		}

		render.JSON(w, r, book)
	}
}
