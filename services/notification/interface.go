package notification

import (
	"context"

	"repairdesk/models"
)

// DefaultRecentLimit is how many notifications a list call returns when no limit is given.
const DefaultRecentLimit int64 = 20

// NotificationService is the in-app notification sink.
type NotificationService interface {
	// Notify stores a notification for userID. It never fails the caller: on error it
	// logs and returns nil.
	Notify(ctx context.Context, userID, title, message string, data map[string]any) *models.Notification
	ListRecent(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// CountUnread is the badge count: unread notifications plus unread chat messages
	// addressed to the actor.
	CountUnread(ctx context.Context, actor models.Actor) (int64, error)
}

// Pusher mirrors a stored notification to a device.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// ChatUnreadCounter is the slice of the chat store the badge merge reads.
type ChatUnreadCounter interface {
	CountUnreadForShop(ctx context.Context, shopID string) (int64, error)
	CountUnreadForUser(ctx context.Context, userID string) (int64, error)
}

// TokenLookup resolves the device token of an identity.
type TokenLookup interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}
