// Package gateways defines the contract between the payment orchestrator and
// the external payment providers, plus one adapter per provider. Adapters
// translate the generic PaymentRequest into a provider-specific call and
// normalize the provider's response and webhook payloads back into generic
// shapes. Adapters never persist anything; persistence belongs to the caller.
package gateways

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the normalized shape passed into an adapter. Each adapter
// declares which fields are mandatory for it and rejects requests that miss
// them before making any network call.
type PaymentRequest struct {
	OrderNumber   string          `json:"order_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	ReturnURL     string          `json:"return_url"`
	CancelURL     string          `json:"cancel_url"`
	Description   string          `json:"description"`
	// Hosted-card fields (Stripe only).
	PaymentMethodID string `json:"payment_method_id"`
	CustomerID      string `json:"customer_id"`
}

// Outcome kinds for PaymentOutcome.
const (
	OutcomeCompleted        = "completed"
	OutcomeRedirectRequired = "redirect_required"
	OutcomeFailed           = "failed"
)

// PaymentOutcome is the normalized result of an adapter call. Kind selects
// which of the remaining fields are meaningful.
type PaymentOutcome struct {
	Kind        string            `json:"kind"`
	Gateway     string            `json:"gateway"`
	ProviderRef string            `json:"provider_ref,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	// FormData is the field map a form-post style gateway requires the client
	// to submit alongside the redirect.
	FormData   map[string]string `json:"form_data,omitempty"`
	ReasonCode string            `json:"reason_code,omitempty"`
}

// WebhookRequest carries one raw inbound provider callback.
type WebhookRequest struct {
	Body     []byte
	Header   http.Header
	SourceIP string
}

// WebhookEvent is the normalized form of a verified provider callback.
type WebhookEvent struct {
	Provider    string
	ProviderRef string
	// OrderNumber is parsed out of the adapter-generated reference, or taken
	// from pass-through metadata when the provider supports it. Empty when
	// neither source yields one.
	OrderNumber string
	Succeeded   bool
	// Amount and Currency are zero-valued when the provider does not echo them.
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

// WebhookAck is the acknowledgement shape a provider expects back. When JSON
// is nil the body is sent as plain text (possibly empty).
type WebhookAck struct {
	Status int
	JSON   map[string]interface{}
	Body   string
}

// Gateway is implemented once per payment provider.
type Gateway interface {
	// Name returns the gateway identifier used in routes and stored on orders.
	Name() string
	// Charge validates the request against this provider's mandatory fields
	// and dispatches it. Validation failures return a *FieldError before any
	// network I/O; provider-side failures return a *ProviderError.
	Charge(ctx context.Context, req PaymentRequest) (*PaymentOutcome, error)
	// ParseWebhook authenticates a raw callback and normalizes it. Callbacks
	// that fail authenticity return ErrWebhookAuthenticity and must not be
	// treated as a valid signal.
	ParseWebhook(req WebhookRequest) (*WebhookEvent, error)
	// Ack returns the acknowledgement shape this provider expects once a
	// callback has been authenticated and parsed, duplicates included.
	Ack() WebhookAck
}

// FieldError reports a missing mandatory request field. It is raised before
// any provider call so the caller can present field-level feedback.
type FieldError struct {
	Gateway string
	Field   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %s", e.Gateway, e.Field)
}

// ProviderError reports a failed provider call (network error, non-success
// HTTP status or provider-reported decline). Adapters do not retry; retry
// policy belongs to the caller.
type ProviderError struct {
	Gateway string
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error [%s]: %s", e.Gateway, e.Code, e.Message)
}

// ErrWebhookAuthenticity marks callbacks whose signature, shared secret or
// source address could not be verified.
var ErrWebhookAuthenticity = fmt.Errorf("webhook authenticity check failed")

// ErrWebhookIgnored marks authentic callbacks that carry an event type this
// integration does not act on. They are acknowledged but drive no transition.
var ErrWebhookIgnored = fmt.Errorf("webhook event ignored")

// BuildReference generates a locally-unique payment reference of the form
// {prefix}-{orderNumber}-{timestamp}.
func BuildReference(prefix, orderNumber string) string {
	return fmt.Sprintf("%s-%s-%d", prefix, orderNumber, time.Now().UnixMilli())
}

// ParseReferenceOrderNumber recovers the order number embedded in a reference
// produced by BuildReference. The order number may itself contain dashes, so
// only the leading prefix and the trailing timestamp are stripped.
func ParseReferenceOrderNumber(ref string) (string, bool) {
	parts := strings.Split(ref, "-")
	if len(parts) < 3 {
		return "", false
	}
	if _, err := strconv.ParseInt(parts[len(parts)-1], 10, 64); err != nil {
		return "", false
	}
	orderNumber := strings.Join(parts[1:len(parts)-1], "-")
	if orderNumber == "" {
		return "", false
	}
	return orderNumber, true
}
