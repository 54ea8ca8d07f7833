package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "repairdesk/database/repository/notification"
	"repairdesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo   notificationRepo.NotificationRepository
	Chat   ChatUnreadCounter
	Logger *zap.Logger

	// Pusher and Tokens are optional; both must be set for push mirroring.
	Pusher Pusher
	Tokens TokenLookup

	Now func() time.Time
}

func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	chat ChatUnreadCounter,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if repo == nil || chat == nil {
		return nil, fmt.Errorf("notification service initialization error: repository or chat counter is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{
		Repo:   repo,
		Chat:   chat,
		Logger: logger,
		Now:    time.Now,
	}, nil
}

func (s *DefaultNotificationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *DefaultNotificationService) Notify(
	ctx context.Context,
	userID, title, message string,
	data map[string]any,
) *models.Notification {
	if data == nil {
		data = map[string]any{}
	}
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Data:      data,
		Read:      false,
		CreatedAt: s.now(),
	}

	if err := s.Repo.Insert(ctx, n); err != nil {
		s.Logger.Error("Failed to store notification",
			zap.String("userId", userID),
			zap.String("type", n.Type()),
			zap.Error(err))
		return nil
	}

	if s.Pusher != nil && s.Tokens != nil {
		go s.push(context.WithoutCancel(ctx), *n)
	}
	return n
}

func (s *DefaultNotificationService) push(ctx context.Context, n models.Notification) {
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	identity, err := s.Tokens.GetByID(ctx, n.UserID)
	if err != nil {
		s.Logger.Warn("Push skipped: identity lookup failed", zap.String("userId", n.UserID), zap.Error(err))
		return
	}
	if identity.FCMToken == "" {
		return
	}

	data := map[string]string{
		"notificationId": n.ID,
		"role":           identity.Role,
	}
	for k, v := range n.Data {
		data[k] = fmt.Sprint(v)
	}
	if err := s.Pusher.Push(ctx, identity.FCMToken, n.Title, n.Message, data); err != nil {
		s.Logger.Warn("Push delivery failed", zap.String("userId", n.UserID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) ListRecent(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.Repo.ListRecent(ctx, userID, limit)
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}

func (s *DefaultNotificationService) CountUnread(ctx context.Context, actor models.Actor) (int64, error) {
	notifications, err := s.Repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, err
	}

	var chats int64
	if actor.IsShop() {
		chats, err = s.Chat.CountUnreadForShop(ctx, actor.ID)
	} else {
		chats, err = s.Chat.CountUnreadForUser(ctx, actor.ID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count unread chat messages for %s: %w", actor.ID, err)
	}
	return notifications + chats, nil
}
