package userRepo

import (
	"context"

	"repairdesk/models"
)

// UserRepository resolves accounts (customers, shops and admins) by id.
type UserRepository interface {
	// GetByID returns models.ErrNotFound when no account carries id.
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	// SetFCMToken records the device token used for push delivery.
	SetFCMToken(ctx context.Context, id, token string) error
}
