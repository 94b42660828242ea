package alert

import (
	"context"
	"log/slog"
)

// ConsoleNotifier logs delivery intent instead of sending anything. It is the
// demo-mode stand-in for a real SMS gateway.
type ConsoleNotifier struct {
	logger *slog.Logger
}

// NewConsoleNotifier creates a console notifier.
func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (c *ConsoleNotifier) Name() string { return "console" }

func (c *ConsoleNotifier) Send(_ context.Context, n Notification) error {
	c.logger.Info("sms alert sent",
		"delivery_id", n.DeliveryID,
		"to", n.Phone,
		"message", n.Message,
		"severity", n.Severity,
		"district", n.District,
	)
	return nil
}
