package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"repairdesk/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Intent is what a client needs to confirm a card payment.
type Intent struct {
	RequestID    string  `json:"requestId"`
	IntentID     string  `json:"intentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// PaymentService opens card payments for requests awaiting payment. The outcome comes
// back through the lifecycle's RecordPayment with the intent id as transaction id, which
// VerifyPaid checks against Stripe before the request is marked paid.
type PaymentService interface {
	CreateIntent(ctx context.Context, actor models.Actor, requestID string) (*Intent, error)
	VerifyPaid(ctx context.Context, req *models.ServiceRequest, transactionID string) error
}

// RequestReader resolves a request the actor may see.
type RequestReader interface {
	Get(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
}

// IntentAPI is the slice of the Stripe PaymentIntent API in use, swappable in tests.
type IntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntents struct{}

func (stripeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

func (stripeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, params)
}

type DefaultPaymentService struct {
	Requests RequestReader
	Intents  IntentAPI
	Currency string
	Logger   *zap.Logger
}

// NewStripePaymentService uses the package-level stripe.Key set at startup.
func NewStripePaymentService(requests RequestReader, currency string, logger *zap.Logger) *DefaultPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultPaymentService{
		Requests: requests,
		Intents:  stripeIntents{},
		Currency: strings.ToLower(currency),
		Logger:   logger,
	}
}

// minorUnits converts an amount to the smallest currency unit Stripe expects.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *DefaultPaymentService) CreateIntent(ctx context.Context, actor models.Actor, requestID string) (*Intent, error) {
	req, err := s.Requests.Get(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != req.UserID {
		return nil, fmt.Errorf("only the customer pays request %s: %w", requestID, models.ErrForbidden)
	}
	if req.Status != models.StatusPaymentPending || req.Payment == nil {
		return nil, fmt.Errorf("request %s is %s, not awaiting payment: %w", requestID, req.Status, models.ErrInvalidTransition)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(req.Payment.Amount)),
		Currency: stripe.String(s.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(fmt.Sprintf("Repair of %s %s", req.Brand, req.ModelName)),
	}
	params.Context = ctx
	params.AddMetadata("requestId", req.ID)
	params.AddMetadata("shopId", req.ShopID)
	params.AddMetadata("userId", req.UserID)

	pi, err := s.Intents.New(params)
	if err != nil {
		s.Logger.Error("Stripe payment intent failed", zap.String("requestId", req.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.Logger.Info("Payment intent created", zap.String("requestId", req.ID), zap.String("intentId", pi.ID))
	return &Intent{
		RequestID:    req.ID,
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       req.Payment.Amount,
		Currency:     s.Currency,
	}, nil
}

// VerifyPaid confirms that transactionID names a succeeded intent opened for req and for
// the full amount due. Any mismatch is a validation error.
func (s *DefaultPaymentService) VerifyPaid(ctx context.Context, req *models.ServiceRequest, transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return models.NewValidationError("transactionId", "card payments must reference the payment intent")
	}
	if req.Payment == nil {
		return fmt.Errorf("request %s has no amount due: %w", req.ID, models.ErrInvalidTransition)
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.Intents.Get(transactionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return models.NewValidationError("transactionId", "unknown payment intent")
		}
		s.Logger.Error("Stripe payment intent lookup failed", zap.String("requestId", req.ID), zap.Error(err))
		return fmt.Errorf("failed to verify payment intent: %w", err)
	}

	var reason string
	switch {
	case pi.Status != stripe.PaymentIntentStatusSucceeded:
		reason = fmt.Sprintf("payment intent is %s", pi.Status)
	case pi.Metadata["requestId"] != req.ID:
		reason = "payment intent belongs to another request"
	case pi.Amount != minorUnits(req.Payment.Amount):
		reason = fmt.Sprintf("payment intent covers %d, %d is due", pi.Amount, minorUnits(req.Payment.Amount))
	case pi.Currency != "" && !strings.EqualFold(string(pi.Currency), s.Currency):
		reason = fmt.Sprintf("payment intent is in %s, not %s", pi.Currency, s.Currency)
	}
	if reason != "" {
		s.Logger.Warn("Rejected payment confirmation",
			zap.String("requestId", req.ID), zap.String("intentId", transactionID), zap.String("reason", reason))
		return models.NewValidationError("transactionId", reason)
	}
	return nil
}
