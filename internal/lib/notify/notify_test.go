package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"bookshelf/internal/models"

	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	got models.Message
	err error
}

func (p *capturingPublisher) SendMessage(_ context.Context, msg models.Message) error {
	p.got = msg
	return p.err
}

func TestSendWelcome(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := &capturingPublisher{}

	SendWelcome(context.Background(), log, pub, "Paul", "paul@arrakis.io")

	require.Equal(t, "paul@arrakis.io", pub.got.Email)
	require.Equal(t, "Paul", pub.got.Name)
	require.Equal(t, "welcome", pub.got.Purpose)
}

// A broker failure is swallowed: the caller's request already succeeded.
func TestSendWelcome_PublisherFailure(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NotPanics(t, func() {
		SendWelcome(context.Background(), log, &capturingPublisher{err: errors.New("broker down")}, "P", "p@x.io")
	})
}
