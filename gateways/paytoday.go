package gateways

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/shopspring/decimal"
)

// GatewayPayToday is the mobile-money redirect gateway identifier.
const GatewayPayToday = "paytoday"

const paytodayRefPrefix = "PT"

// PayTodayGateway initiates a payment against the PayToday API and redirects
// the buyer to PayToday's hosted page. PayToday collects via the buyer's
// phone, so the phone number is mandatory.
type PayTodayGateway struct {
	cfg         config.PayTodayConfig
	callbackURL string
	httpClient  *http.Client
}

// NewPayTodayGateway creates a PayToday gateway from explicit credentials.
func NewPayTodayGateway(cfg config.PayTodayConfig, baseURL string) *PayTodayGateway {
	return &PayTodayGateway{
		cfg:         cfg,
		callbackURL: strings.TrimRight(baseURL, "/") + "/v1/payments/webhook/paytoday",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PayTodayGateway) Name() string { return GatewayPayToday }

type paytodayChargeResponse struct {
	Status     string `json:"status"`
	PaymentID  string `json:"paymentId"`
	PaymentURL string `json:"paymentUrl"`
	Message    string `json:"message"`
}

// Charge validates the request and posts it to the PayToday payments API.
func (g *PayTodayGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentOutcome, error) {
	if req.OrderNumber == "" {
		return nil, &FieldError{Gateway: GatewayPayToday, Field: "orderId"}
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &FieldError{Gateway: GatewayPayToday, Field: "amount"}
	}
	if req.CustomerPhone == "" {
		return nil, &FieldError{Gateway: GatewayPayToday, Field: "customerPhone"}
	}

	description := req.Description
	if description == "" {
		description = "Order #" + req.OrderNumber
	}

	reference := BuildReference(paytodayRefPrefix, req.OrderNumber)
	payload := map[string]interface{}{
		"reference":     reference,
		"amount":        req.Amount.StringFixed(2),
		"phoneNumber":   req.CustomerPhone,
		"customerName":  req.CustomerName,
		"customerEmail": req.CustomerEmail,
		"description":   description,
		"metadata": map[string]string{
			"orderId": req.OrderNumber,
		},
		"callbackUrl": g.callbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Gateway: GatewayPayToday, Code: "network_error", Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Gateway: GatewayPayToday,
			Code:    http.StatusText(resp.StatusCode),
			Message: string(respBody),
		}
	}

	var chargeResp paytodayChargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, &ProviderError{Gateway: GatewayPayToday, Code: "bad_response", Message: err.Error()}
	}
	if chargeResp.PaymentURL == "" {
		return nil, &ProviderError{Gateway: GatewayPayToday, Code: "bad_response", Message: "missing payment URL"}
	}

	providerRef := chargeResp.PaymentID
	if providerRef == "" {
		providerRef = reference
	}

	return &PaymentOutcome{
		Kind:        OutcomeRedirectRequired,
		Gateway:     GatewayPayToday,
		ProviderRef: providerRef,
		RedirectURL: chargeResp.PaymentURL,
	}, nil
}

type paytodayWebhookPayload struct {
	Reference string            `json:"reference"`
	PaymentID string            `json:"payment_id"`
	Status    string            `json:"status"`
	Amount    string            `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata"`
}

// ParseWebhook authenticates the callback against the X-PayToday-Signature
// header, an HMAC-SHA256 of the raw body keyed on the shared secret.
func (g *PayTodayGateway) ParseWebhook(req WebhookRequest) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write(req.Body)
	expected := hex.EncodeToString(mac.Sum(nil))
	received := req.Header.Get("X-PayToday-Signature")
	if received == "" || !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, ErrWebhookAuthenticity
	}

	var payload paytodayWebhookPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return nil, err
	}

	orderNumber, ok := ParseReferenceOrderNumber(payload.Reference)
	if !ok && payload.Metadata != nil {
		orderNumber = payload.Metadata["orderId"]
	}

	var amount decimal.Decimal
	if payload.Amount != "" {
		if parsed, err := decimal.NewFromString(payload.Amount); err == nil {
			amount = parsed
		}
	}

	return &WebhookEvent{
		Provider:    GatewayPayToday,
		ProviderRef: payload.Reference,
		OrderNumber: orderNumber,
		Succeeded:   payload.Status == "successful",
		Amount:      amount,
		Currency:    payload.Currency,
		Metadata:    payload.Metadata,
	}, nil
}

// Ack returns the JSON acknowledgement PayToday expects.
func (g *PayTodayGateway) Ack() WebhookAck {
	return WebhookAck{Status: http.StatusOK, JSON: map[string]interface{}{"received": true}}
}
