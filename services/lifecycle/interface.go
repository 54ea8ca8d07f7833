package lifecycle

import (
	"context"

	"repairdesk/models"
)

// LifecycleService drives a service request from pending to paid. Every call takes the
// authenticated actor explicitly.
type LifecycleService interface {
	Create(ctx context.Context, actor models.Actor, input models.ServiceRequestInput) (*models.ServiceRequest, error)
	Transition(ctx context.Context, actor models.Actor, id string, to models.RequestStatus, repair *models.RepairFields) (*models.ServiceRequest, error)
	Complete(ctx context.Context, actor models.Actor, id string, amount float64) (*models.ServiceRequest, error)
	RecordPayment(ctx context.Context, actor models.Actor, id string, outcome models.PaymentOutcome) (*models.ServiceRequest, error)

	Get(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
	ListForShop(ctx context.Context, actor models.Actor) ([]models.ServiceRequest, error)
	ListForUser(ctx context.Context, actor models.Actor) ([]models.ServiceRequest, error)
	ListTransactions(ctx context.Context, actor models.Actor) ([]models.ServiceRequest, error)
}

// IdentityResolver resolves user and shop ids.
type IdentityResolver interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

// CacheInvalidator drops derived reports once a shop's requests change.
type CacheInvalidator interface {
	InvalidateShop(ctx context.Context, shopID string)
}

// PaymentVerifier confirms with the card processor that a reported payment happened.
type PaymentVerifier interface {
	VerifyPaid(ctx context.Context, req *models.ServiceRequest, transactionID string) error
}
