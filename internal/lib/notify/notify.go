// Package notify enqueues mail jobs for the out-of-process sender. Sending
// is best effort: a broker failure is logged and never fails the request
// that triggered it.
package notify

import (
	"context"
	"log/slog"

	"bookshelf/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// Noop stands in when no broker is configured.
type Noop struct{}

func (Noop) SendMessage(ctx context.Context, msg models.Message) error { return nil }

func SendWelcome(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	name, email string,
) {
	msg := models.Message{
		Email:   email,
		Name:    name,
		Purpose: "welcome",
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to enqueue welcome email", slog.Any("err", err))
	}
}
