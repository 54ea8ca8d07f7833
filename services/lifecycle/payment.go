package lifecycle

import (
	"context"
	"fmt"
	"math"

	"repairdesk/models"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RecordPayment stores the outcome of a payment attempt made by the customer.
func (s *DefaultLifecycleService) RecordPayment(
	ctx context.Context,
	actor models.Actor,
	id string,
	outcome models.PaymentOutcome,
) (_ *models.ServiceRequest, err error) {
	ctx, span := tracer.Start(ctx, "lifecycle.RecordPayment")
	span.SetAttributes(attribute.String("requestId", id), attribute.String("paymentStatus", string(outcome.Status)))
	defer func() { finishSpan(span, err) }()

	if !outcome.Status.Valid() {
		return nil, models.NewValidationError("paymentStatus", fmt.Sprintf("unknown payment status %q", outcome.Status))
	}
	if a := outcome.Amount; a != nil && (*a <= 0 || math.IsNaN(*a) || math.IsInf(*a, 0)) {
		return nil, models.NewValidationError("amount", "must be a positive number")
	}

	cur, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeCustomer(actor, cur); err != nil {
		return nil, err
	}
	if !CanRecordPayment(cur.Status) || cur.Payment == nil {
		return nil, fmt.Errorf("cannot record payment while %s: %w", cur.Status, models.ErrInvalidTransition)
	}
	if a := outcome.Amount; a != nil && *a != cur.Payment.Amount {
		return nil, models.NewValidationError("amount",
			fmt.Sprintf("%.2f does not match the amount due %.2f", *a, cur.Payment.Amount))
	}
	if outcome.Status == models.PaymentPaid && s.Payments != nil {
		if err := s.Payments.VerifyPaid(ctx, cur, outcome.TransactionID); err != nil {
			return nil, err
		}
	}

	next := clone(cur)
	p := next.Payment
	p.Status = outcome.Status
	if outcome.PaymentMethod != "" {
		p.PaymentMethod = outcome.PaymentMethod
	}
	if outcome.TransactionID != "" {
		p.TransactionID = outcome.TransactionID
	}
	if outcome.Notes != "" {
		p.PaymentNotes = outcome.Notes
	}
	if outcome.Status == models.PaymentPaid {
		now := s.now()
		p.PaidAt = &now
		next.Status = models.StatusPaid
	}

	if err := s.commit(ctx, cur, next); err != nil {
		return nil, err
	}
	s.Logger.Info("Payment recorded",
		zap.String("requestId", id),
		zap.String("paymentStatus", string(outcome.Status)),
		zap.String("transactionId", p.TransactionID))

	data := func(kind string) map[string]any {
		return map[string]any{
			"type":      kind,
			"requestId": next.ID,
			"shopId":    next.ShopID,
			"userId":    next.UserID,
			"amount":    p.Amount,
			"modelName": next.ModelName,
		}
	}
	switch outcome.Status {
	case models.PaymentPaid:
		s.notify(ctx, next.ShopID, "Payment Received",
			fmt.Sprintf("%s paid %.2f for the repair of %s.", next.CustomerName, p.Amount, deviceLabel(next)),
			data(models.NotifPaymentReceived))
		s.notify(ctx, next.UserID, "Payment Successful",
			fmt.Sprintf("Your payment of %.2f for %s was successful.", p.Amount, deviceLabel(next)),
			data(models.NotifPaymentSuccessful))
	case models.PaymentFailed:
		s.notify(ctx, next.UserID, "Payment Failed",
			fmt.Sprintf("Your payment of %.2f for %s did not go through. Please try again.", p.Amount, deviceLabel(next)),
			data(models.NotifPaymentFailed))
	}
	return next, nil
}
