package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// PaymentIntent is the provider-neutral view of a payment intent.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// PaymentProvider is the external payment processor. Services never talk
// to the provider SDK directly.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	CreateIntent(ctx context.Context, amountCents int64, currency, customerID string, metadata map[string]string) (*PaymentIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type PaymentService struct {
	provider PaymentProvider
	pricing  *PassPricing
	users    UserRepository
}

func NewPaymentService(provider PaymentProvider, pricing *PassPricing, users UserRepository) *PaymentService {
	return &PaymentService{provider: provider, pricing: pricing, users: users}
}

// CreatePassIntent creates a payment intent priced for the given pass type
// and returns it so the client can confirm the payment.
func (s *PaymentService) CreatePassIntent(ctx context.Context, userID, passType string) (*PaymentIntent, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("payment provider is not configured")
	}

	price, err := s.pricing.PriceCents(passType)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, price, "usd", s.ensureCustomer(ctx, userID), map[string]string{
		"app_user_id": userID,
		"pass_type":   passType,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":   userID,
			"pass_type": passType,
		}).Error("Failed to create payment intent")
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"pass_type": passType,
		"intent_id": intent.ID,
	}).Info("Payment intent created")

	return intent, nil
}

// ensureCustomer returns the user's provider customer id, creating and
// persisting one on first payment. Failures come back as an empty id: a
// customerless intent still charges fine, so this never blocks payment.
func (s *PaymentService) ensureCustomer(ctx context.Context, userID string) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Could not load user for payment customer lookup")
		return ""
	}
	if user.StripeCustomerID != nil {
		return *user.StripeCustomerID
	}

	customerID, err := s.provider.CreateCustomer(ctx, user.Email, user.DisplayName(), map[string]string{
		"app_user_id": userID,
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Could not create payment customer")
		return ""
	}

	if err := s.users.SetStripeCustomerID(ctx, userID, customerID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Could not persist payment customer id")
	}

	return customerID
}
