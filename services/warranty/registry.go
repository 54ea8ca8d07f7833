package warranty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"repairdesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarrantyRegistry records purchased devices whose warranties the sweep watches.
type WarrantyRegistry interface {
	Register(ctx context.Context, actor models.Actor, input models.WarrantyInput) (*models.Warranty, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Warranty, error)
	// List returns the caller's warranties, or every warranty for admins.
	List(ctx context.Context, actor models.Actor) ([]models.Warranty, error)
	FindByModelNumber(ctx context.Context, actor models.Actor, modelNumber string) (*models.Warranty, error)
}

// IdentityResolver fills in contact details left off the form.
type IdentityResolver interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

func parsePurchaseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (s *DefaultWarrantyService) Register(ctx context.Context, actor models.Actor, input models.WarrantyInput) (*models.Warranty, error) {
	required := []struct{ field, value string }{
		{"modelName", input.ModelName},
		{"modelNumber", input.ModelNumber},
		{"company", input.Company},
		{"purchaseDate", input.PurchaseDate},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, models.NewValidationError(r.field, "is required")
		}
	}
	purchased, err := parsePurchaseDate(input.PurchaseDate)
	if err != nil {
		return nil, models.NewValidationError("purchaseDate", "expected YYYY-MM-DD or RFC 3339")
	}
	at := s.Now().UTC()
	if purchased.After(at) {
		return nil, models.NewValidationError("purchaseDate", "cannot be in the future")
	}

	w := &models.Warranty{
		ID:                uuid.NewString(),
		UserID:            actor.ID,
		ModelName:         strings.TrimSpace(input.ModelName),
		ModelNumber:       strings.TrimSpace(input.ModelNumber),
		Company:           strings.TrimSpace(input.Company),
		PurchaseDate:      purchased.UTC(),
		UserEmail:         strings.TrimSpace(input.UserEmail),
		PhoneNumber:       strings.TrimSpace(input.PhoneNumber),
		NotificationsSent: []models.WarrantySent{},
		CreatedAt:         at,
	}
	if (w.UserEmail == "" || w.PhoneNumber == "") && s.Users != nil {
		if ident, err := s.Users.GetByID(ctx, actor.ID); err == nil {
			if w.UserEmail == "" {
				w.UserEmail = ident.Email
			}
			if w.PhoneNumber == "" {
				w.PhoneNumber = ident.Phone
			}
		} else {
			s.Logger.Warn("Could not resolve contact details for warranty", zap.String("userId", actor.ID), zap.Error(err))
		}
	}

	if err := s.Repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.Logger.Info("Warranty registered",
		zap.String("warrantyId", w.ID),
		zap.String("userId", w.UserID),
		zap.Time("expiresAt", w.ExpiresAt()))
	return w, nil
}

func (s *DefaultWarrantyService) Get(ctx context.Context, actor models.Actor, id string) (*models.Warranty, error) {
	w, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != w.UserID {
		return nil, fmt.Errorf("warranty %s: %w", id, models.ErrForbidden)
	}
	return w, nil
}

func (s *DefaultWarrantyService) List(ctx context.Context, actor models.Actor) ([]models.Warranty, error) {
	if actor.IsAdmin() {
		return s.Repo.ListAll(ctx)
	}
	return s.Repo.ListByUser(ctx, actor.ID)
}

func (s *DefaultWarrantyService) FindByModelNumber(ctx context.Context, actor models.Actor, modelNumber string) (*models.Warranty, error) {
	modelNumber = strings.TrimSpace(modelNumber)
	if modelNumber == "" {
		return nil, models.NewValidationError("modelNumber", "is required")
	}
	owner := actor.ID
	if actor.IsAdmin() {
		owner = ""
	}
	return s.Repo.FindByModelNumber(ctx, owner, modelNumber)
}
