package warrantyRepo

import (
	"context"
	"time"

	"repairdesk/models"
)

// WarrantyRepository backs warranty registration and the expiry reminder sweep.
type WarrantyRepository interface {
	Create(ctx context.Context, w *models.Warranty) error
	GetByID(ctx context.Context, id string) (*models.Warranty, error)
	ListByUser(ctx context.Context, userID string) ([]models.Warranty, error)
	// FindByModelNumber returns the newest warranty for the model; an empty userID
	// searches every owner.
	FindByModelNumber(ctx context.Context, userID, modelNumber string) (*models.Warranty, error)
	ListAll(ctx context.Context) ([]models.Warranty, error)
	// ClaimInterval atomically records that the reminder for interval is being sent.
	// It reports false when another sweep already recorded it.
	ClaimInterval(ctx context.Context, warrantyID string, interval int, sentAt time.Time) (bool, error)
	// ReleaseInterval undoes a claim whose delivery failed on every channel.
	ReleaseInterval(ctx context.Context, warrantyID string, interval int) error
}
