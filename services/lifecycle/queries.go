package lifecycle

import (
	"context"
	"fmt"

	"repairdesk/models"
)

// Get returns a request visible to its customer, its shop or an admin.
func (s *DefaultLifecycleService) Get(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error) {
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || actor.ID == req.ShopID || actor.ID == req.UserID {
		return req, nil
	}
	return nil, fmt.Errorf("request %s: %w", id, models.ErrForbidden)
}

func (s *DefaultLifecycleService) ListForShop(ctx context.Context, actor models.Actor) ([]models.ServiceRequest, error) {
	if !actor.IsShop() {
		return nil, fmt.Errorf("only shops have incoming requests: %w", models.ErrForbidden)
	}
	return s.Repo.ListByShop(ctx, actor.ID)
}

func (s *DefaultLifecycleService) ListForUser(ctx context.Context, actor models.Actor) ([]models.ServiceRequest, error) {
	return s.Repo.ListByUser(ctx, actor.ID)
}

// ListTransactions is the admin view of every paid request.
func (s *DefaultLifecycleService) ListTransactions(ctx context.Context, actor models.Actor) ([]models.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("transactions are admin only: %w", models.ErrForbidden)
	}
	return s.Repo.ListPaid(ctx)
}
