// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"safari-connect/internal/models"
)

// Message is what every channel receives for one relay call.
type Message struct {
	OrderID string
	Type    models.NotificationType
	Details models.RentalDetails
}

// Notifier delivers a message over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// Subject is the one-line summary used as an email subject or message header.
func (m Message) Subject() string {
	switch m.Type {
	case models.NotificationPayment:
		return fmt.Sprintf("Payment received: %s (%s)", m.OrderID, m.Details.Name)
	default:
		return fmt.Sprintf("New WiFi rental: %s (%s)", m.OrderID, m.Details.Name)
	}
}

// Body renders the rental details as plain text, skipping empty fields.
func (m Message) Body() string {
	var b strings.Builder
	b.WriteString(m.Subject())
	b.WriteString("\n")

	fields := []struct{ label, value string }{
		{"Order", m.OrderID},
		{"Name", m.Details.Name},
		{"Phone", m.Details.Phone},
		{"Email", m.Details.Email},
		{"Plan", m.Details.Plan},
		{"Location", m.Details.Location},
		{"Arrival", m.Details.ArrivalDate},
		{"Flight", m.Details.FlightNumber},
		{"Message", m.Details.Message},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", f.label, f.value)
	}
	return b.String()
}

// LogNotifier writes messages to the structured log. It is always enabled so
// a relay call leaves a trace even with no external channel configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "notification",
		"order_id", msg.OrderID,
		"type", msg.Type,
		"name", msg.Details.Name,
		"plan", msg.Details.Plan,
		"arrival", msg.Details.ArrivalDate,
	)
	return nil
}
