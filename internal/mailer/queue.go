package mailer

import (
	"context"
	"fmt"

	"vetline/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// QueueMailer hands the message to the broker; the mail worker binary does
// the actual SMTP delivery. Publish success is what the caller gets back.
type QueueMailer struct {
	pub Publisher
}

func NewQueue(pub Publisher) *QueueMailer {
	return &QueueMailer{pub: pub}
}

func (m *QueueMailer) Send(ctx context.Context, to, link string) error {
	const op = "mailer.QueueMailer.Send"

	if err := m.pub.SendMessage(ctx, models.Message{Email: to, Link: link}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
