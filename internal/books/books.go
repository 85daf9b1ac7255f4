package books

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "bookshelf/internal/lib/logger"
	"bookshelf/internal/models"
	"bookshelf/internal/storage"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrNotOwner     = errors.New("not the owner of the book")
)

// Update carries a partial edit. A nil field means "leave unchanged"; the
// owner is not representable here at all, so a client cannot hand a record
// to another user.
type Update struct {
	Title  *string
	Author *string
	Genre  *string
	Rating *int
	Note   *string
	Link   *string
}

type Books struct {
	log          *slog.Logger
	bookSaver    BookSaver
	bookProvider BookProvider
	bookMutator  BookMutator
}

type BookSaver interface {
	SaveBook(ctx context.Context, book models.Book) (models.Book, error)
}

type BookProvider interface {
	BookByID(ctx context.Context, id int64) (models.Book, error)
	Books(ctx context.Context, filter models.BookFilter) ([]models.Book, error)
}

type BookMutator interface {
	UpdateBook(ctx context.Context, book models.Book) (models.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

func New(
	log *slog.Logger,
	bookSaver BookSaver,
	bookProvider BookProvider,
	bookMutator BookMutator,
) *Books {
	return &Books{
		log:          log,
		bookSaver:    bookSaver,
		bookProvider: bookProvider,
		bookMutator:  bookMutator,
	}
}

// AddBook stores a new record for ownerID. The owner comes from the
// verified identity only; whatever UserID the caller put on the draft is
// overwritten.
func (s *Books) AddBook(ctx context.Context, ownerID int64, book models.Book) (models.Book, error) {
	const op = "books.AddBook"

	book.UserID = ownerID

	saved, err := s.bookSaver.SaveBook(ctx, book)
	if err != nil {
		s.log.With(slog.String("op", op)).Error("failed to save book", sl.Err(err))
		return models.Book{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("book added", slog.Int64("uid", ownerID), slog.Int64("book_id", saved.ID))

	return saved, nil
}

// BooksByOwner lists ownerID's records newest first. The owner predicate is
// forced into the filter here, not trusted from the caller's input.
func (s *Books) BooksByOwner(ctx context.Context, ownerID int64, filter models.BookFilter) ([]models.Book, error) {
	const op = "books.BooksByOwner"

	filter.OwnerID = ownerID

	list, err := s.bookProvider.Books(ctx, filter)
	if err != nil {
		s.log.With(slog.String("op", op)).Error("failed to list books", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// UpdateBook applies a partial edit to one of ownerID's records. Fields the
// client omitted keep their stored values.
func (s *Books) UpdateBook(ctx context.Context, ownerID, bookID int64, upd Update) (models.Book, error) {
	const op = "books.UpdateBook"

	log := s.log.With(slog.String("op", op))

	book, err := s.owned(ctx, ownerID, bookID)
	if err != nil {
		return models.Book{}, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Title != nil {
		book.Title = *upd.Title
	}
	if upd.Author != nil {
		book.Author = *upd.Author
	}
	if upd.Genre != nil {
		book.Genre = *upd.Genre
	}
	if upd.Rating != nil {
		book.Rating = *upd.Rating
	}
	if upd.Note != nil {
		book.Note = *upd.Note
	}
	if upd.Link != nil {
		book.Link = *upd.Link
	}

	updated, err := s.bookMutator.UpdateBook(ctx, book)
	if err != nil {
		// The record can vanish between the ownership check and the write;
		// that race resolves as not found.
		if errors.Is(err, storage.ErrBookNotFound) {
			return models.Book{}, fmt.Errorf("%s: %w", op, ErrBookNotFound)
		}

		log.Error("failed to update book", sl.Err(err))

		return models.Book{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("book updated", slog.Int64("uid", ownerID), slog.Int64("book_id", bookID))

	return updated, nil
}

// DeleteBook removes one of ownerID's records.
func (s *Books) DeleteBook(ctx context.Context, ownerID, bookID int64) error {
	const op = "books.DeleteBook"

	log := s.log.With(slog.String("op", op))

	if _, err := s.owned(ctx, ownerID, bookID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.bookMutator.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, storage.ErrBookNotFound) {
			return fmt.Errorf("%s: %w", op, ErrBookNotFound)
		}

		log.Error("failed to delete book", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("book deleted", slog.Int64("uid", ownerID), slog.Int64("book_id", bookID))

	return nil
}

// owned loads a record and enforces the ownership rule every mutation goes
// through: missing record before mismatched owner.
func (s *Books) owned(ctx context.Context, ownerID, bookID int64) (models.Book, error) {
	book, err := s.bookProvider.BookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, storage.ErrBookNotFound) {
			return models.Book{}, ErrBookNotFound
		}

		return models.Book{}, err
	}

	if book.UserID != ownerID {
		return models.Book{}, ErrNotOwner
	}

	return book, nil
}
