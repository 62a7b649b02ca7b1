package gateways

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/shopspring/decimal"
)

// GatewayPayFast is the form-post redirect gateway identifier.
const GatewayPayFast = "payfast"

const payfastRefPrefix = "PF"

// payfastFormFieldOrder is the field order PayFast requires when signing the
// outbound payment form.
var payfastFormFieldOrder = []string{
	"merchant_id", "merchant_key", "return_url", "cancel_url", "notify_url",
	"name_first", "name_last", "email_address", "m_payment_id", "amount",
	"item_name", "custom_str1",
}

// payfastITNFieldOrder is the variable order PayFast uses when signing an
// Instant Transaction Notification.
var payfastITNFieldOrder = []string{
	"m_payment_id", "pf_payment_id", "payment_status", "item_name",
	"item_description", "amount_gross", "amount_fee", "amount_net",
	"custom_str1", "custom_str2", "custom_str3", "custom_str4", "custom_str5",
	"custom_int1", "custom_int2", "custom_int3", "custom_int4", "custom_int5",
	"name_first", "name_last", "email_address", "merchant_id",
}

// PayFastGateway builds a signed payment form the buyer submits to PayFast's
// hosted page. Charge makes no outbound call; confirmation arrives via ITN.
type PayFastGateway struct {
	cfg       config.PayFastConfig
	notifyURL string
}

// NewPayFastGateway creates a PayFast gateway from explicit credentials.
func NewPayFastGateway(cfg config.PayFastConfig, baseURL string) *PayFastGateway {
	return &PayFastGateway{
		cfg:       cfg,
		notifyURL: strings.TrimRight(baseURL, "/") + "/v1/payments/webhook/payfast",
	}
}

func (g *PayFastGateway) Name() string { return GatewayPayFast }

// Charge validates the request and returns the redirect URL plus the signed
// field map the client must form-post to PayFast.
func (g *PayFastGateway) Charge(_ context.Context, req PaymentRequest) (*PaymentOutcome, error) {
	if req.OrderNumber == "" {
		return nil, &FieldError{Gateway: GatewayPayFast, Field: "orderId"}
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &FieldError{Gateway: GatewayPayFast, Field: "amount"}
	}
	if req.ReturnURL == "" {
		return nil, &FieldError{Gateway: GatewayPayFast, Field: "returnUrl"}
	}
	if req.CancelURL == "" {
		return nil, &FieldError{Gateway: GatewayPayFast, Field: "cancelUrl"}
	}

	firstName, lastName := splitName(req.CustomerName)
	itemName := req.Description
	if itemName == "" {
		itemName = "Order #" + req.OrderNumber
	}

	reference := BuildReference(payfastRefPrefix, req.OrderNumber)
	formData := map[string]string{
		"merchant_id":   g.cfg.MerchantID,
		"merchant_key":  g.cfg.MerchantKey,
		"return_url":    req.ReturnURL,
		"cancel_url":    req.CancelURL,
		"notify_url":    g.notifyURL,
		"name_first":    firstName,
		"name_last":     lastName,
		"email_address": req.CustomerEmail,
		"m_payment_id":  reference,
		"amount":        req.Amount.StringFixed(2),
		"item_name":     itemName,
		"custom_str1":   req.OrderNumber,
	}
	formData["signature"] = payfastSignature(formData, payfastFormFieldOrder, g.cfg.Passphrase)

	return &PaymentOutcome{
		Kind:        OutcomeRedirectRequired,
		Gateway:     GatewayPayFast,
		ProviderRef: reference,
		RedirectURL: g.cfg.ProcessURL,
		FormData:    formData,
	}, nil
}

// ParseWebhook authenticates a PayFast ITN: source IP allowlist when
// configured, then the MD5 signature over the posted variables.
func (g *PayFastGateway) ParseWebhook(req WebhookRequest) (*WebhookEvent, error) {
	if len(g.cfg.TrustedIPs) > 0 && !containsString(g.cfg.TrustedIPs, req.SourceIP) {
		return nil, ErrWebhookAuthenticity
	}

	values, err := url.ParseQuery(string(req.Body))
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}

	expected := payfastSignature(fields, payfastITNFieldOrder, g.cfg.Passphrase)
	if fields["signature"] == "" || fields["signature"] != expected {
		return nil, ErrWebhookAuthenticity
	}

	reference := fields["m_payment_id"]
	orderNumber, ok := ParseReferenceOrderNumber(reference)
	if !ok {
		orderNumber = fields["custom_str1"]
	}

	var amount decimal.Decimal
	if gross := fields["amount_gross"]; gross != "" {
		if parsed, err := decimal.NewFromString(gross); err == nil {
			amount = parsed
		}
	}

	return &WebhookEvent{
		Provider:    GatewayPayFast,
		ProviderRef: reference,
		OrderNumber: orderNumber,
		Succeeded:   fields["payment_status"] == "COMPLETE",
		Amount:      amount,
		Metadata:    fields,
	}, nil
}

// Ack returns the empty 200 PayFast expects for an ITN.
func (g *PayFastGateway) Ack() WebhookAck {
	return WebhookAck{Status: http.StatusOK}
}

// payfastSignature builds the MD5 parameter signature over the non-empty
// fields in the given order, with the passphrase appended when set.
func payfastSignature(fields map[string]string, order []string, passphrase string) string {
	var parts []string
	for _, key := range order {
		if value := fields[key]; value != "" {
			parts = append(parts, key+"="+url.QueryEscape(value))
		}
	}
	payload := strings.Join(parts, "&")
	if passphrase != "" {
		payload += "&passphrase=" + url.QueryEscape(passphrase)
	}
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
