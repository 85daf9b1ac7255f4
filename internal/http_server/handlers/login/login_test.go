package login_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"bookshelf/internal/auth"
	"bookshelf/internal/http_server/handlers/login"

	"github.com/go-playground/validator/v10"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

type fakeLoginer struct {
	token string
	err   error
}

func (f *fakeLoginer) Login(_ context.Context, email, password string) (string, error) {
	return f.token, f.err
}

func newHandler(l *fakeLoginer) http.HandlerFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return login.New(log, validator.New(), l)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	apitest.Handler(newHandler(&fakeLoginer{token: "issued-token"})).
		Post("/auth/login").
		JSON(`{"email":"paul@arrakis.io","password":"kwisatz"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.token`, "issued-token")).
		End()
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	apitest.Handler(newHandler(&fakeLoginer{err: auth.ErrInvalidCredentials})).
		Post("/auth/login").
		JSON(`{"email":"paul@arrakis.io","password":"wrong"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.msg`, "Invalid credentials")).
		End()
}

func TestLogin_Validation(t *testing.T) {
	t.Parallel()

	apitest.Handler(newHandler(&fakeLoginer{token: "x"})).
		Post("/auth/login").
		JSON(`{"email":"paul@arrakis.io"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}
