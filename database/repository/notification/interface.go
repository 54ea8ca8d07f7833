package notificationRepo

import (
	"context"

	"repairdesk/models"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	// ListRecent returns at most limit notifications for userID, newest first.
	ListRecent(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	// MarkAllRead flips every unread row for userID and returns how many changed.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}
