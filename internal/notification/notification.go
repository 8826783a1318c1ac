package notification

import (
	"context"
	"log/slog"
)

const (
	// KindVerificationCode marks a one-time code handed to a phone.
	KindVerificationCode = "verification_code"
	// KindPremiumActivated marks a completed premium purchase.
	KindPremiumActivated = "premium_activated"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier stands in for an SMS gateway: it writes the message to the
// structured logger and never transmits anything.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger. Code bodies are not
// logged outside debug level.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	attrs := []any{slog.String("kind", message.Kind), slog.String("destination", message.Destination)}
	if message.Kind == KindVerificationCode {
		n.logger.InfoContext(ctx, "notification", attrs...)
		n.logger.DebugContext(ctx, "notification body", slog.String("destination", message.Destination), slog.String("body", message.Body))
		return nil
	}
	n.logger.InfoContext(ctx, "notification", append(attrs, slog.String("body", message.Body))...)
	return nil
}
