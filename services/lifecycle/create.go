package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"repairdesk/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func validateInput(input *models.ServiceRequestInput) error {
	required := []struct {
		field string
		value string
	}{
		{"shopId", input.ShopID},
		{"deviceType", input.DeviceType},
		{"brand", input.Brand},
		{"modelName", input.ModelName},
		{"modelNumber", input.ModelNumber},
		{"problem", input.Problem},
		{"customerName", input.CustomerName},
		{"customerPhone", input.CustomerPhone},
		{"customerAddress", input.CustomerAddress},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return models.NewValidationError(r.field, "is required")
		}
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return models.NewValidationError("priority", fmt.Sprintf("unknown priority %q", input.Priority))
	}
	if r := input.EstimatedCostRange; r != nil && (r.Min < 0 || r.Max < r.Min) {
		return models.NewValidationError("estimatedCostRange", "min must be non-negative and not exceed max")
	}
	return nil
}

// Create files a new pending request from the actor to a shop.
func (s *DefaultLifecycleService) Create(
	ctx context.Context,
	actor models.Actor,
	input models.ServiceRequestInput,
) (_ *models.ServiceRequest, err error) {
	ctx, span := tracer.Start(ctx, "lifecycle.Create")
	span.SetAttributes(attribute.String("shopId", input.ShopID))
	defer func() { finishSpan(span, err) }()

	if actor.IsShop() {
		return nil, fmt.Errorf("shops cannot file service requests: %w", models.ErrForbidden)
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	if _, err := s.Users.GetByID(ctx, actor.ID); err != nil {
		return nil, fmt.Errorf("resolving customer: %w", err)
	}
	shop, err := s.Users.GetByID(ctx, input.ShopID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("shop %s: %w", input.ShopID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("resolving shop: %w", err)
	}
	if shop.Role != models.RoleService {
		return nil, models.NewValidationError("shopId", "does not identify a service shop")
	}

	now := s.now()
	req := &models.ServiceRequest{
		ID:                 uuid.NewString(),
		UserID:             actor.ID,
		ShopID:             input.ShopID,
		DeviceType:         input.DeviceType,
		Brand:              input.Brand,
		ModelName:          input.ModelName,
		ModelNumber:        input.ModelNumber,
		Problem:            input.Problem,
		Description:        input.Description,
		CustomerName:       input.CustomerName,
		CustomerPhone:      input.CustomerPhone,
		CustomerAddress:    input.CustomerAddress,
		UserLocation:       input.UserLocation,
		Priority:           input.Priority,
		EstimatedCostRange: input.EstimatedCostRange,
		Status:             models.StatusPending,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("requestId", req.ID))
	if s.Analytics != nil {
		s.Analytics.InvalidateShop(ctx, req.ShopID)
	}

	s.Logger.Info("Service request created",
		zap.String("requestId", req.ID),
		zap.String("shopId", req.ShopID),
		zap.String("userId", req.UserID))

	s.notify(ctx, req.ShopID, "New Service Request",
		fmt.Sprintf("New repair request for %s: %s", deviceLabel(req), req.Problem),
		map[string]any{
			"type":      models.NotifNewServiceRequest,
			"requestId": req.ID,
			"userId":    req.UserID,
			"modelName": req.ModelName,
		})
	return req, nil
}
