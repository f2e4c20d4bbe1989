package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/shelf"
)

// Ensure LoggingNotifier implements shelf.Notifier.
var _ shelf.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with debug logging.
type LoggingNotifier struct {
	next   shelf.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next shelf.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Publish delegates to the wrapped notifier and logs the event.
func (n *LoggingNotifier) Publish(ctx context.Context, channel string, payload any) (err error) {
	defer func() {
		n.logger.Debug("publish",
			"channel", channel,
			"payload", payload,
			"err", err,
		)
	}()
	return n.next.Publish(ctx, channel, payload)
}
