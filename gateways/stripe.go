package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// GatewayStripe is the hosted-card gateway identifier.
const GatewayStripe = "stripe"

// stripeBackend is the slice of the Stripe API the adapter uses. Tests swap
// in a stub to assert that validation failures never reach the provider.
type stripeBackend interface {
	NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeAPIBackend struct {
	api *client.API
}

func (b *stripeAPIBackend) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return b.api.PaymentIntents.New(params)
}

// StripeGateway charges cards synchronously through Stripe payment intents.
// It requires a pre-created payment method and a Stripe customer reference.
type StripeGateway struct {
	cfg     config.StripeConfig
	backend stripeBackend
}

// NewStripeGateway creates a Stripe gateway from explicit credentials.
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeGateway{cfg: cfg, backend: &stripeAPIBackend{api: api}}
}

func (g *StripeGateway) Name() string { return GatewayStripe }

// Charge confirms a payment intent against the supplied payment method. The
// outcome is completed only when Stripe reports a terminal success status.
func (g *StripeGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentOutcome, error) {
	if req.PaymentMethodID == "" {
		return nil, &FieldError{Gateway: GatewayStripe, Field: "paymentMethodId"}
	}
	if req.CustomerID == "" {
		return nil, &FieldError{Gateway: GatewayStripe, Field: "customerId"}
	}
	if req.OrderNumber == "" {
		return nil, &FieldError{Gateway: GatewayStripe, Field: "orderId"}
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &FieldError{Gateway: GatewayStripe, Field: "amount"}
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency:      stripe.String(strings.ToLower(currency)),
		Customer:      stripe.String(req.CustomerID),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderNumber)
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}

	pi, err := g.backend.NewPaymentIntent(params)
	if err != nil {
		code := "provider_error"
		msg := err.Error()
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			code = string(stripeErr.Code)
			msg = stripeErr.Msg
		}
		return nil, &ProviderError{Gateway: GatewayStripe, Code: code, Message: msg}
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return &PaymentOutcome{
			Kind:        OutcomeFailed,
			Gateway:     GatewayStripe,
			ProviderRef: pi.ID,
			ReasonCode:  string(pi.Status),
		}, nil
	}

	return &PaymentOutcome{
		Kind:        OutcomeCompleted,
		Gateway:     GatewayStripe,
		ProviderRef: pi.ID,
	}, nil
}

// CreateIntent pre-initializes a payment intent and returns its client secret
// so the hosted card form can collect the payment method browser-side.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", &FieldError{Gateway: GatewayStripe, Field: "amount"}
	}
	if currency == "" {
		currency = "USD"
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount.Shift(2).IntPart()),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	if orderNumber != "" {
		params.AddMetadata("order_id", orderNumber)
	}
	pi, err := g.backend.NewPaymentIntent(params)
	if err != nil {
		return "", &ProviderError{Gateway: GatewayStripe, Code: "provider_error", Message: err.Error()}
	}
	return pi.ClientSecret, nil
}

// ParseWebhook verifies the Stripe-Signature header against the webhook
// signing secret before trusting anything in the payload.
func (g *StripeGateway) ParseWebhook(req WebhookRequest) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(req.Body, req.Header.Get("Stripe-Signature"), g.cfg.WebhookSecret)
	if err != nil {
		return nil, ErrWebhookAuthenticity
	}

	var succeeded bool
	switch event.Type {
	case "payment_intent.succeeded":
		succeeded = true
	case "payment_intent.payment_failed":
		succeeded = false
	default:
		return nil, ErrWebhookIgnored
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, err
	}

	return &WebhookEvent{
		Provider:    GatewayStripe,
		ProviderRef: pi.ID,
		OrderNumber: pi.Metadata["order_id"],
		Succeeded:   succeeded,
		Amount:      decimal.New(pi.Amount, -2),
		Currency:    strings.ToUpper(string(pi.Currency)),
		Metadata:    pi.Metadata,
	}, nil
}

// Ack returns the JSON acknowledgement Stripe expects.
func (g *StripeGateway) Ack() WebhookAck {
	return WebhookAck{Status: http.StatusOK, JSON: map[string]interface{}{"received": true}}
}
