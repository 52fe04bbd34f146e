package mailer

import (
	"context"
	"log/slog"
)

// LogMailer is the non-production substitute: instead of sending anything it
// writes the link to the log so it can be clicked by hand.
type LogMailer struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, link string) error {
	m.log.Info("verification email (not sent, log mode)",
		slog.String("to", to),
		slog.String("link", link),
	)

	return nil
}
