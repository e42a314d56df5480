package payment

import (
	"context"
	"fmt"

	"gym-service/internal/service"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	log "github.com/sirupsen/logrus"
)

// StripeProvider implements service.PaymentProvider against the Stripe API.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer create failed: %w", err)
	}

	log.WithField("customer_id", customer.ID).Debug("Stripe customer created")

	return customer.ID, nil
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency, customerID string, metadata map[string]string) (*service.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent create failed: %w", err)
	}

	log.WithFields(log.Fields{
		"intent_id": pi.ID,
		"amount":    pi.Amount,
		"currency":  pi.Currency,
	}).Debug("Stripe payment intent created")

	return fromStripeIntent(pi), nil
}

func (p *StripeProvider) RetrieveIntent(ctx context.Context, id string) (*service.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent retrieve failed: %w", err)
	}

	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *service.PaymentIntent {
	// Prefer the amount actually received once the payment settles.
	amount := pi.Amount
	if pi.AmountReceived > 0 {
		amount = pi.AmountReceived
	}

	return &service.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}
