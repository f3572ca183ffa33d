// internal/repository/notification_repository.go
package repository

import (
	"time"

	"safari-connect/internal/database"
	"safari-connect/internal/models"
)

type NotificationRepository interface {
	Record(n *models.Notification) error
	ListByOrderID(orderID string) ([]models.Notification, error)
}

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Record(n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(`
        INSERT INTO notifications (order_id, type, channels, success, error, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, n.OrderID, string(n.Type), n.Channels, n.Success, n.Error, n.CreatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = int(id)
	return nil
}

func (r *notificationRepository) ListByOrderID(orderID string) ([]models.Notification, error) {
	rows, err := r.db.Query(`
        SELECT id, order_id, type, channels, success, error, created_at
        FROM notifications WHERE order_id = ? ORDER BY id ASC
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.OrderID, &typ, &n.Channels, &n.Success, &n.Error, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = models.NotificationType(typ)
		out = append(out, n)
	}
	return out, rows.Err()
}
