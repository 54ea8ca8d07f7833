package serviceRequestRepo

import (
	"context"
	"time"

	"repairdesk/models"
)

// ServiceRequestRepository defines data access for service requests.
type ServiceRequestRepository interface {
	// Create inserts a new request document.
	Create(ctx context.Context, req *models.ServiceRequest) error
	// GetByID returns models.ErrNotFound when no document has the id.
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	// ListByShop returns a shop's requests, newest first.
	ListByShop(ctx context.Context, shopID string) ([]models.ServiceRequest, error)
	// ListByUser returns a customer's requests, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.ServiceRequest, error)
	// ListPaid returns every paid request, newest first.
	ListPaid(ctx context.Context) ([]models.ServiceRequest, error)
	// FindForAnalytics returns a shop's requests created at or after since (all when nil).
	FindForAnalytics(ctx context.Context, shopID string, since *time.Time) ([]models.ServiceRequest, error)
	// ReplaceIfUnchanged writes next only while the stored document still has
	// expectedStatus and expectedVersion. It returns models.ErrNotFound when the id
	// is unknown and models.ErrConflict when the document moved on.
	ReplaceIfUnchanged(ctx context.Context, next *models.ServiceRequest, expectedStatus models.RequestStatus, expectedVersion int64) error
}
