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

// GatewayDOP is the Digital Online Payments redirect gateway identifier.
const GatewayDOP = "dop"

const dopRefPrefix = "DOP"

// DOPGateway initiates a checkout against the Digital Online Payments API and
// redirects the buyer to its hosted page.
type DOPGateway struct {
	cfg         config.DOPConfig
	callbackURL string
	httpClient  *http.Client
}

// NewDOPGateway creates a DOP gateway from explicit credentials.
func NewDOPGateway(cfg config.DOPConfig, baseURL string) *DOPGateway {
	return &DOPGateway{
		cfg:         cfg,
		callbackURL: strings.TrimRight(baseURL, "/") + "/v1/payments/webhook/dop",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *DOPGateway) Name() string { return GatewayDOP }

type dopChargeResponse struct {
	Status     string `json:"status"`
	PaymentID  string `json:"paymentId"`
	PaymentURL string `json:"paymentUrl"`
	Message    string `json:"message"`
}

// Charge validates the request and posts it to the DOP checkout API.
func (g *DOPGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentOutcome, error) {
	if req.OrderNumber == "" {
		return nil, &FieldError{Gateway: GatewayDOP, Field: "orderId"}
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &FieldError{Gateway: GatewayDOP, Field: "amount"}
	}
	if req.ReturnURL == "" {
		return nil, &FieldError{Gateway: GatewayDOP, Field: "returnUrl"}
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	transactionID := BuildReference(dopRefPrefix, req.OrderNumber)
	payload := map[string]interface{}{
		"merchantId":    g.cfg.MerchantID,
		"transactionId": transactionID,
		"amount":        req.Amount.StringFixed(2),
		"currency":      currency,
		"customerName":  req.CustomerName,
		"customerEmail": req.CustomerEmail,
		"description":   "Order #" + req.OrderNumber,
		"metadata": map[string]string{
			"orderId": req.OrderNumber,
		},
		"callbackUrl": g.callbackURL,
		"returnUrl":   req.ReturnURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", g.cfg.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Gateway: GatewayDOP, Code: "network_error", Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Gateway: GatewayDOP,
			Code:    http.StatusText(resp.StatusCode),
			Message: string(respBody),
		}
	}

	var chargeResp dopChargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, &ProviderError{Gateway: GatewayDOP, Code: "bad_response", Message: err.Error()}
	}
	if chargeResp.PaymentURL == "" {
		return nil, &ProviderError{Gateway: GatewayDOP, Code: "bad_response", Message: "missing payment URL"}
	}

	return &PaymentOutcome{
		Kind:        OutcomeRedirectRequired,
		Gateway:     GatewayDOP,
		ProviderRef: transactionID,
		RedirectURL: chargeResp.PaymentURL,
	}, nil
}

type dopWebhookPayload struct {
	TransactionID string            `json:"transaction_id"`
	Status        string            `json:"status"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
	Signature     string            `json:"signature"`
}

// ParseWebhook authenticates the callback: DOP signs transaction_id, status
// and amount with the shared secret and places the HMAC in the payload.
func (g *DOPGateway) ParseWebhook(req WebhookRequest) (*WebhookEvent, error) {
	var payload dopWebhookPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return nil, err
	}

	expected := dopSignature(payload.TransactionID, payload.Status, payload.Amount, g.cfg.SecretKey)
	if payload.Signature == "" || !hmac.Equal([]byte(expected), []byte(payload.Signature)) {
		return nil, ErrWebhookAuthenticity
	}

	orderNumber, ok := ParseReferenceOrderNumber(payload.TransactionID)
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
		Provider:    GatewayDOP,
		ProviderRef: payload.TransactionID,
		OrderNumber: orderNumber,
		Succeeded:   payload.Status == "completed",
		Amount:      amount,
		Currency:    payload.Currency,
		Metadata:    payload.Metadata,
	}, nil
}

// Ack returns the JSON acknowledgement DOP expects.
func (g *DOPGateway) Ack() WebhookAck {
	return WebhookAck{Status: http.StatusOK, JSON: map[string]interface{}{"received": true}}
}

// dopSignature computes the payload HMAC DOP uses for callbacks.
func dopSignature(transactionID, status, amount, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(transactionID + "|" + status + "|" + amount))
	return hex.EncodeToString(mac.Sum(nil))
}
