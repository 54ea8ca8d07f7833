package lifecycle

import (
	"context"
	"fmt"
	"time"

	serviceRequestRepo "repairdesk/database/repository/servicerequest"
	"repairdesk/models"
	"repairdesk/services/notification"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("repairdesk/services/lifecycle")

// DefaultLifecycleService is the production implementation.
type DefaultLifecycleService struct {
	Repo     serviceRequestRepo.ServiceRequestRepository
	Users    IdentityResolver
	Notifier notification.NotificationService
	// Analytics is optional.
	Analytics CacheInvalidator
	// Payments is set when card payments are enabled; a "paid" outcome must then
	// reference a verified intent.
	Payments PaymentVerifier
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewDefaultLifecycleService(
	repo serviceRequestRepo.ServiceRequestRepository,
	users IdentityResolver,
	notifier notification.NotificationService,
	logger *zap.Logger,
) (*DefaultLifecycleService, error) {
	if repo == nil || users == nil || notifier == nil {
		return nil, fmt.Errorf("lifecycle service initialization error: repository, identity resolver or notifier is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultLifecycleService{
		Repo:     repo,
		Users:    users,
		Notifier: notifier,
		Logger:   logger,
		Now:      time.Now,
	}, nil
}

func (s *DefaultLifecycleService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// authorizeShop passes the request's own shop and admins.
func authorizeShop(actor models.Actor, req *models.ServiceRequest) error {
	if actor.IsAdmin() || actor.ID == req.ShopID {
		return nil
	}
	return fmt.Errorf("actor %s does not own shop of request %s: %w", actor.ID, req.ID, models.ErrForbidden)
}

// authorizeCustomer passes the request's own customer and admins.
func authorizeCustomer(actor models.Actor, req *models.ServiceRequest) error {
	if actor.IsAdmin() || actor.ID == req.UserID {
		return nil
	}
	return fmt.Errorf("actor %s is not the customer of request %s: %w", actor.ID, req.ID, models.ErrForbidden)
}

func clone(req *models.ServiceRequest) *models.ServiceRequest {
	c := *req
	if req.RepairUpdate != nil {
		ru := *req.RepairUpdate
		c.RepairUpdate = &ru
	}
	if req.Payment != nil {
		p := *req.Payment
		c.Payment = &p
	}
	return &c
}

// commit writes next over cur only if nobody else changed cur in between.
func (s *DefaultLifecycleService) commit(ctx context.Context, cur, next *models.ServiceRequest) error {
	next.UpdatedAt = s.now()
	next.Version = cur.Version + 1
	if err := s.Repo.ReplaceIfUnchanged(ctx, next, cur.Status, cur.Version); err != nil {
		return err
	}
	if s.Analytics != nil {
		s.Analytics.InvalidateShop(ctx, next.ShopID)
	}
	return nil
}

// notify is best effort; the mutation it follows is already committed.
func (s *DefaultLifecycleService) notify(ctx context.Context, userID, title, message string, data map[string]any) {
	if n := s.Notifier.Notify(ctx, userID, title, message, data); n == nil {
		s.Logger.Warn("Notification not delivered",
			zap.String("userId", userID),
			zap.Any("type", data["type"]),
			zap.Any("requestId", data["requestId"]))
	}
}
