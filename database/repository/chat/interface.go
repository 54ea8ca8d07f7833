package chatRepo

import (
	"context"

	"repairdesk/models"
)

// ChatRepository stores the shop/customer message log.
type ChatRepository interface {
	Insert(ctx context.Context, msg *models.ChatMessage) error
	// Conversation returns the thread between one shop and one customer, oldest first.
	Conversation(ctx context.Context, shopID, userID string) ([]models.ChatMessage, error)
	// Conversations summarises every customer thread of a shop, latest first.
	Conversations(ctx context.Context, shopID string) ([]models.ConversationSummary, error)
	// MarkReadFrom flips unread messages in the thread that were not sent by readerID.
	MarkReadFrom(ctx context.Context, shopID, userID, readerID string) (int64, error)
	// CountUnreadForShop counts unread rows in any of the shop's threads not sent by the shop.
	CountUnreadForShop(ctx context.Context, shopID string) (int64, error)
	// CountUnreadForUser counts unread rows in the customer's threads not sent by the customer.
	CountUnreadForUser(ctx context.Context, userID string) (int64, error)
}
