package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	chatRepo "repairdesk/database/repository/chat"
	"repairdesk/models"
	"repairdesk/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService is the shop/customer message log.
type ChatService interface {
	Send(ctx context.Context, actor models.Actor, shopID, userID, message string) (*models.ChatMessage, error)
	Conversation(ctx context.Context, actor models.Actor, shopID, userID string) ([]models.ChatMessage, error)
	Conversations(ctx context.Context, actor models.Actor) ([]models.ConversationSummary, error)
	MarkRead(ctx context.Context, actor models.Actor, shopID, userID string) (int64, error)
	UnreadCountFor(ctx context.Context, actor models.Actor) (int64, error)
}

type DefaultChatService struct {
	Repo     chatRepo.ChatRepository
	Notifier notification.NotificationService
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewDefaultChatService(repo chatRepo.ChatRepository, notifier notification.NotificationService, logger *zap.Logger) *DefaultChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultChatService{Repo: repo, Notifier: notifier, Logger: logger, Now: time.Now}
}

// participant reports whether the actor is one side of the shop/user thread.
func participant(actor models.Actor, shopID, userID string) bool {
	return actor.IsAdmin() || actor.ID == shopID || actor.ID == userID
}

// Send appends a message and notifies the other side of the thread.
func (s *DefaultChatService) Send(ctx context.Context, actor models.Actor, shopID, userID, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, models.NewValidationError("message", "is required")
	}
	if shopID == "" || userID == "" {
		return nil, models.NewValidationError("shopId", "shop and user are required")
	}
	if !participant(actor, shopID, userID) {
		return nil, fmt.Errorf("actor %s is not part of this conversation: %w", actor.ID, models.ErrForbidden)
	}
	// Admins write on behalf of the shop, the same side they read as.
	sender := actor.ID
	if actor.IsAdmin() && sender != userID {
		sender = shopID
	}

	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		ShopID:    shopID,
		UserID:    userID,
		SenderID:  sender,
		Message:   message,
		Read:      false,
		Timestamp: s.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	recipient, fallback := shopID, "a user"
	if sender == shopID {
		recipient, fallback = userID, "Shop"
	}
	// A shop messaging itself has no counterparty.
	if recipient != sender {
		name := actor.Name
		if name == "" {
			name = fallback
		}
		s.Notifier.Notify(ctx, recipient, "New Message",
			fmt.Sprintf("You have a new message from %s", name),
			map[string]any{"type": models.NotifNewMessage, "shopId": shopID, "userId": userID})
	}
	return msg, nil
}

func (s *DefaultChatService) Conversation(ctx context.Context, actor models.Actor, shopID, userID string) ([]models.ChatMessage, error) {
	if !participant(actor, shopID, userID) {
		return nil, fmt.Errorf("actor %s is not part of this conversation: %w", actor.ID, models.ErrForbidden)
	}
	return s.Repo.Conversation(ctx, shopID, userID)
}

// Conversations lists the actor's customer threads. Only shops have them.
func (s *DefaultChatService) Conversations(ctx context.Context, actor models.Actor) ([]models.ConversationSummary, error) {
	if !actor.IsShop() {
		return nil, fmt.Errorf("only shops have conversation lists: %w", models.ErrForbidden)
	}
	return s.Repo.Conversations(ctx, actor.ID)
}

// MarkRead flips the messages the actor received in the thread.
func (s *DefaultChatService) MarkRead(ctx context.Context, actor models.Actor, shopID, userID string) (int64, error) {
	if !participant(actor, shopID, userID) {
		return 0, fmt.Errorf("actor %s is not part of this conversation: %w", actor.ID, models.ErrForbidden)
	}
	reader := actor.ID
	if actor.IsAdmin() {
		reader = shopID
	}
	count, err := s.Repo.MarkReadFrom(ctx, shopID, userID, reader)
	if err != nil {
		return 0, err
	}
	s.Logger.Debug("Marked chat messages read",
		zap.String("shopId", shopID), zap.String("userId", userID), zap.Int64("count", count))
	return count, nil
}

func (s *DefaultChatService) UnreadCountFor(ctx context.Context, actor models.Actor) (int64, error) {
	if actor.IsShop() {
		return s.Repo.CountUnreadForShop(ctx, actor.ID)
	}
	return s.Repo.CountUnreadForUser(ctx, actor.ID)
}
