package notification

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the structured log. It is the default when no
// broker is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	attrs := []any{
		"kind", string(msg.Kind),
		"to", msg.To,
		"subject", msg.Subject,
	}
	if msg.Attachment != nil {
		attrs = append(attrs, "attachment", msg.Attachment.Filename, "attachment_bytes", len(msg.Attachment.Data))
	}
	s.logger.InfoContext(ctx, "notification", attrs...)
	return nil
}
