package lifecycle

import (
	"context"
	"fmt"
	"math"

	"repairdesk/models"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func nonNegative(field string, v *float64) error {
	if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return models.NewValidationError(field, "must be a non-negative number")
	}
	return nil
}

// mergeRepair applies the supplied fields onto the request's repair record. totalCost is
// labor plus parts unless the caller overrides it.
func mergeRepair(req *models.ServiceRequest, fields *models.RepairFields, servicePerson string) error {
	for _, c := range []struct {
		field string
		value *float64
	}{
		{"laborCost", fields.LaborCost},
		{"partsCost", fields.PartsCost},
		{"totalCost", fields.TotalCost},
	} {
		if err := nonNegative(c.field, c.value); err != nil {
			return err
		}
	}

	ru := req.RepairUpdate
	if ru == nil {
		ru = &models.RepairUpdate{}
		req.RepairUpdate = ru
	}
	if fields.Details != nil {
		ru.Details = *fields.Details
	}
	if fields.PartsReplaced != nil {
		ru.PartsReplaced = *fields.PartsReplaced
	}
	if fields.LaborCost != nil {
		ru.LaborCost = *fields.LaborCost
	}
	if fields.PartsCost != nil {
		ru.PartsCost = *fields.PartsCost
	}
	if fields.WarrantyAfterRepair != nil {
		ru.WarrantyAfterRepair = *fields.WarrantyAfterRepair
	}
	if fields.Notes != nil {
		ru.Notes = *fields.Notes
	}
	if fields.EstimatedCompletionDate != nil {
		d := *fields.EstimatedCompletionDate
		ru.EstimatedCompletionDate = &d
	}
	if servicePerson != "" {
		ru.ServicePersonName = servicePerson
	}

	if fields.TotalCost != nil {
		ru.TotalCost = *fields.TotalCost
	} else {
		ru.TotalCost = ru.LaborCost + ru.PartsCost
	}
	return nil
}

// Transition moves a request along the shop-driven part of the graph.
func (s *DefaultLifecycleService) Transition(
	ctx context.Context,
	actor models.Actor,
	id string,
	to models.RequestStatus,
	repair *models.RepairFields,
) (_ *models.ServiceRequest, err error) {
	ctx, span := tracer.Start(ctx, "lifecycle.Transition")
	span.SetAttributes(attribute.String("requestId", id), attribute.String("status", string(to)))
	defer func() { finishSpan(span, err) }()

	if !to.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	if repair != nil && !acceptsRepairDetails(to) {
		return nil, models.NewValidationError("repairUpdate", "repair details only accompany in_progress or completed")
	}

	cur, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeShop(actor, cur); err != nil {
		return nil, err
	}
	if !CanTransition(cur.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", cur.Status, to, models.ErrInvalidTransition)
	}

	next := clone(cur)
	now := s.now()
	next.Status = to
	if to == models.StatusAccepted && next.AcceptedAt == nil {
		next.AcceptedAt = &now
	}
	if to == models.StatusCompleted && next.CompletedAt == nil {
		next.CompletedAt = &now
	}
	if repair != nil {
		if err := mergeRepair(next, repair, actor.Name); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, cur, next); err != nil {
		return nil, err
	}
	s.Logger.Info("Service request transitioned",
		zap.String("requestId", id),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(to)))

	title, message := updateCopy(to, next)
	s.notify(ctx, next.UserID, title, message, map[string]any{
		"type":      models.NotifServiceRequestUpdate,
		"requestId": next.ID,
		"shopId":    next.ShopID,
		"status":    string(to),
		"modelName": next.ModelName,
	})
	return next, nil
}

// Complete closes the repair with a final amount and asks the customer to pay.
func (s *DefaultLifecycleService) Complete(
	ctx context.Context,
	actor models.Actor,
	id string,
	amount float64,
) (_ *models.ServiceRequest, err error) {
	ctx, span := tracer.Start(ctx, "lifecycle.Complete")
	span.SetAttributes(attribute.String("requestId", id), attribute.Float64("amount", amount))
	defer func() { finishSpan(span, err) }()

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, models.NewValidationError("amount", "must be a positive number")
	}

	cur, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeShop(actor, cur); err != nil {
		return nil, err
	}
	if !CanComplete(cur.Status) {
		return nil, fmt.Errorf("%s -> %s: %w", cur.Status, models.StatusPaymentPending, models.ErrInvalidTransition)
	}

	next := clone(cur)
	now := s.now()
	next.Status = models.StatusPaymentPending
	if next.CompletedAt == nil {
		next.CompletedAt = &now
	}
	next.Payment = &models.Payment{
		Amount: amount,
		Status: models.PaymentPending,
	}

	if err := s.commit(ctx, cur, next); err != nil {
		return nil, err
	}
	s.Logger.Info("Service request completed",
		zap.String("requestId", id),
		zap.Float64("amount", amount))

	s.notify(ctx, next.UserID, "Payment Required",
		fmt.Sprintf("The repair of your %s is complete. Please pay %.2f to collect it.", deviceLabel(next), amount),
		map[string]any{
			"type":      models.NotifPaymentRequired,
			"requestId": next.ID,
			"shopId":    next.ShopID,
			"amount":    amount,
			"modelName": next.ModelName,
		})
	return next, nil
}
