package alert

import "context"

// Notification is one rendered message bound for a single recipient. The
// message text is already in the recipient's preferred language.
type Notification struct {
	DeliveryID string `json:"delivery_id"`
	AlertID    string `json:"alert_id"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	District   string `json:"district"` // the alert's target district
}

// Notifier delivers notifications through an external gateway (SMS provider,
// message broker, or the console in demo mode). The distributor does not know
// or care how delivery happens.
type Notifier interface {
	// Name returns the gateway identifier.
	Name() string

	// Send delivers a notification. Implementations must be safe for
	// concurrent use.
	Send(ctx context.Context, n Notification) error
}
