package mailer

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"school-notifier/internal/domain/notice"
)

// LogSender writes notices to the log instead of delivering them. It keeps
// every accepted message for inspection.
type LogSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []notice.Message
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg notice.Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email",
		slog.String("kind", msg.Kind.String()),
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

func (s *LogSender) Sent() []notice.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

func (s *LogSender) Reset() {
	s.mu.Lock()
	s.sent = nil
	s.mu.Unlock()
}
