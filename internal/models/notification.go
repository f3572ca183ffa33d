// internal/models/notification.go
package models

import (
	"time"
)

type NotificationType string

const (
	NotificationRental  NotificationType = "rental"
	NotificationPayment NotificationType = "payment"
)

func (t NotificationType) Valid() bool {
	return t == NotificationRental || t == NotificationPayment
}

// NotificationRequest is the relay's request body.
type NotificationRequest struct {
	RentalDetails    RentalDetails    `json:"rentalDetails"`
	NotificationType NotificationType `json:"notificationType"`
}

// NotificationResponse is the relay's reply: success with an order id, or an error.
type NotificationResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Notification is one relay attempt as recorded in the log table.
type Notification struct {
	ID        int              `json:"id"`
	OrderID   string           `json:"orderId"`
	Type      NotificationType `json:"type"`
	Channels  string           `json:"channels"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
