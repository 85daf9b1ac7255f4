package books

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"bookshelf/internal/models"
	"bookshelf/internal/storage"

	"github.com/stretchr/testify/require"
)

type fakeBookStore struct {
	books  map[int64]models.Book
	nextID int64
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: map[int64]models.Book{}, nextID: 1}
}

func (f *fakeBookStore) SaveBook(_ context.Context, b models.Book) (models.Book, error) {
	b.ID = f.nextID
	f.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.books[b.ID] = b
	return b, nil
}

func (f *fakeBookStore) BookByID(_ context.Context, id int64) (models.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return models.Book{}, storage.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeBookStore) Books(_ context.Context, filter models.BookFilter) ([]models.Book, error) {
	var out []models.Book
	for _, b := range f.books {
		if b.UserID != filter.OwnerID {
			continue
		}
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.BookID != 0 && b.ID != filter.BookID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookStore) UpdateBook(_ context.Context, b models.Book) (models.Book, error) {
	stored, ok := f.books[b.ID]
	if !ok {
		return models.Book{}, storage.ErrBookNotFound
	}
	b.UserID = stored.UserID
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = time.Now()
	f.books[b.ID] = b
	return b, nil
}

func (f *fakeBookStore) DeleteBook(_ context.Context, id int64) error {
	if _, ok := f.books[id]; !ok {
		return storage.ErrBookNotFound
	}
	delete(f.books, id)
	return nil
}

func newTestBooks(store *fakeBookStore) *Books {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store, store, store)
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func TestAddBook_OwnerFromIdentity(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())
	ctx := context.Background()

	// A forged owner on the draft is ignored.
	saved, err := s.AddBook(ctx, 1, models.Book{UserID: 99, Title: "Dune"})
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.UserID)
}

func TestAddBook_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())
	ctx := context.Background()

	saved, err := s.AddBook(ctx, 1, models.Book{
		Title:  "Dune",
		Author: "Herbert",
		Rating: 5,
	})
	require.NoError(t, err)

	got, err := s.BooksByOwner(ctx, 1, models.BookFilter{BookID: saved.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Dune", got[0].Title)
	require.Equal(t, "Herbert", got[0].Author)
	require.Equal(t, 5, got[0].Rating)
}

func TestBooksByOwner_NeverCrossesUsers(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())
	ctx := context.Background()

	mine, err := s.AddBook(ctx, 1, models.Book{Title: "Dune"})
	require.NoError(t, err)
	theirs, err := s.AddBook(ctx, 2, models.Book{Title: "Solaris"})
	require.NoError(t, err)

	list, err := s.BooksByOwner(ctx, 1, models.BookFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	// Even asking for the other user's id directly returns nothing.
	list, err = s.BooksByOwner(ctx, 1, models.BookFilter{BookID: theirs.ID})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestBooksByOwner_FilterForced(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())
	ctx := context.Background()

	_, err := s.AddBook(ctx, 2, models.Book{Title: "Solaris"})
	require.NoError(t, err)

	// A filter claiming another owner is overwritten by the verified one.
	list, err := s.BooksByOwner(ctx, 1, models.BookFilter{OwnerID: 2})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUpdateBook_PartialPreservesFields(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())
	ctx := context.Background()

	saved, err := s.AddBook(ctx, 1, models.Book{
		Title:  "Dune",
		Author: "Herbert",
		Genre:  "sci-fi",
		Rating: 5,
		Note:   "spice",
		Link:   "https://example.com/dune",
	})
	require.NoError(t, err)

	updated, err := s.UpdateBook(ctx, 1, saved.ID, Update{Rating: intptr(4)})
	require.NoError(t, err)

	require.Equal(t, 4, updated.Rating)
	require.Equal(t, "Dune", updated.Title)
	require.Equal(t, "Herbert", updated.Author)
	require.Equal(t, "sci-fi", updated.Genre)
	require.Equal(t, "spice", updated.Note)
	require.Equal(t, "https://example.com/dune", updated.Link)
}

func TestUpdateBook_OwnerImmutable(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())
	ctx := context.Background()

	saved, err := s.AddBook(ctx, 1, models.Book{Title: "Dune"})
	require.NoError(t, err)

	updated, err := s.UpdateBook(ctx, 1, saved.ID, Update{Title: strptr("Dune Messiah")})
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.UserID)
}

func TestUpdateBook_NotOwner(t *testing.T) {
	t.Parallel()

	store := newFakeBookStore()
	s := newTestBooks(store)
	ctx := context.Background()

	saved, err := s.AddBook(ctx, 1, models.Book{Title: "Dune", Rating: 5})
	require.NoError(t, err)

	_, err = s.UpdateBook(ctx, 2, saved.ID, Update{Rating: intptr(1)})
	require.ErrorIs(t, err, ErrNotOwner)

	// No mutation happened.
	require.Equal(t, 5, store.books[saved.ID].Rating)
}

func TestUpdateBook_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestBooks(newFakeBookStore())

	_, err := s.UpdateBook(context.Background(), 1, 404, Update{Title: strptr("x")})
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	t.Parallel()

	store := newFakeBookStore()
	s := newTestBooks(store)
	ctx := context.Background()

	saved, err := s.AddBook(ctx, 1, models.Book{Title: "Dune"})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteBook(ctx, 2, saved.ID), ErrNotOwner)
	require.Contains(t, store.books, saved.ID)

	require.NoError(t, s.DeleteBook(ctx, 1, saved.ID))
	require.NotContains(t, store.books, saved.ID)

	// Second delete of the same record resolves as not found.
	require.ErrorIs(t, s.DeleteBook(ctx, 1, saved.ID), ErrBookNotFound)
}
