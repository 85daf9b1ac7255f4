package list_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"bookshelf/internal/http_server/handlers/books/list"
	"bookshelf/internal/lib/jwt"
	"bookshelf/internal/middleware/authn"
	"bookshelf/internal/models"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeLister struct {
	gotOwner  int64
	gotFilter models.BookFilter
	books     []models.Book
}

func (f *fakeLister) BooksByOwner(_ context.Context, ownerID int64, filter models.BookFilter) ([]models.Book, error) {
	f.gotOwner = ownerID
	f.gotFilter = filter
	return f.books, nil
}

func newHandler(l *fakeLister) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return authn.New(log, testSecret)(list.New(log, l))
}

func token(t *testing.T, userID int64) string {
	t.Helper()

	tok, err := jwt.NewToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestList_OwnerScoped(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{books: []models.Book{
		{ID: 2, UserID: 7, Title: "Dune Messiah"},
		{ID: 1, UserID: 7, Title: "Dune"},
	}}

	apitest.Handler(newHandler(lister)).
		Get("/books").
		Header("x-auth-token", token(t, 7)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 2)).
		Assert(jsonpath.Equal(`$[0].title`, "Dune Messiah")).
		End()

	require.Equal(t, int64(7), lister.gotOwner)
}

func TestList_QueryFilter(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{}

	apitest.Handler(newHandler(lister)).
		Get("/books").
		Query("genre", "sci-fi").
		Query("search", "dune").
		Query("_id", "3").
		Header("x-auth-token", token(t, 7)).
		Expect(t).
		Status(http.StatusOK).
		End()

	require.Equal(t, "sci-fi", lister.gotFilter.Genre)
	require.Equal(t, "dune", lister.gotFilter.Search)
	require.Equal(t, int64(3), lister.gotFilter.BookID)
}

func TestList_BadID(t *testing.T) {
	t.Parallel()

	apitest.Handler(newHandler(&fakeLister{})).
		Get("/books").
		Query("_id", "not-a-number").
		Header("x-auth-token", token(t, 7)).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestList_EmptyIsArray(t *testing.T) {
	t.Parallel()

	// An owner with no records gets [], not null.
	apitest.Handler(newHandler(&fakeLister{books: []models.Book{}})).
		Get("/books").
		Header("x-auth-token", token(t, 7)).
		Expect(t).
		Status(http.StatusOK).
		Body(`[]`).
		End()
}
