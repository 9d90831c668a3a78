package mail

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	from   string
	logger *zap.Logger
}

// NewLogMailer creates a mailer that logs at info level.
func NewLogMailer(from string, logger *zap.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail: empty recipient")
	}
	m.logger.Info("email",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
