package gateways

import (
	"context"
	"net/url"
	"testing"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayFastGateway(trustedIPs ...string) *PayFastGateway {
	return NewPayFastGateway(config.PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "testpassphrase",
		ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
		TrustedIPs:  trustedIPs,
	}, "https://shop.example.com")
}

func payfastRequest() PaymentRequest {
	return PaymentRequest{
		OrderNumber:   "ORD-123456",
		Amount:        decimal.RequireFromString("150.00"),
		CustomerName:  "Jane van der Merwe",
		CustomerEmail: "jane@example.com",
		ReturnURL:     "https://shop.example.com/checkout/success",
		CancelURL:     "https://shop.example.com/checkout/cancel",
	}
}

func TestPayFastChargeMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PaymentRequest)
		field  string
	}{
		{"order", func(r *PaymentRequest) { r.OrderNumber = "" }, "orderId"},
		{"amount", func(r *PaymentRequest) { r.Amount = decimal.Zero }, "amount"},
		{"return url", func(r *PaymentRequest) { r.ReturnURL = "" }, "returnUrl"},
		{"cancel url", func(r *PaymentRequest) { r.CancelURL = "" }, "cancelUrl"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := payfastRequest()
			tc.mutate(&req)

			_, err := newTestPayFastGateway().Charge(context.Background(), req)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestPayFastChargeBuildsSignedForm(t *testing.T) {
	gw := newTestPayFastGateway()

	outcome, err := gw.Charge(context.Background(), payfastRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedirectRequired, outcome.Kind)
	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", outcome.RedirectURL)

	form := outcome.FormData
	require.NotNil(t, form)
	assert.Equal(t, "10000100", form["merchant_id"])
	assert.Equal(t, "150.00", form["amount"])
	assert.Equal(t, "ORD-123456", form["custom_str1"])
	assert.Equal(t, "Jane", form["name_first"])
	assert.Equal(t, "van der Merwe", form["name_last"])
	assert.Equal(t, "https://shop.example.com/v1/payments/webhook/payfast", form["notify_url"])
	assert.Equal(t, outcome.ProviderRef, form["m_payment_id"])

	orderNumber, ok := ParseReferenceOrderNumber(form["m_payment_id"])
	require.True(t, ok)
	assert.Equal(t, "ORD-123456", orderNumber)

	// The signature covers exactly the non-empty fields in documented order.
	without := make(map[string]string, len(form))
	for k, v := range form {
		if k != "signature" {
			without[k] = v
		}
	}
	assert.Equal(t, payfastSignature(without, payfastFormFieldOrder, "testpassphrase"), form["signature"])
}

func payfastITN(reference string) url.Values {
	values := url.Values{}
	values.Set("m_payment_id", reference)
	values.Set("pf_payment_id", "1089250")
	values.Set("payment_status", "COMPLETE")
	values.Set("item_name", "Order #ORD-123456")
	values.Set("amount_gross", "150.00")
	values.Set("amount_fee", "-3.45")
	values.Set("amount_net", "146.55")
	values.Set("custom_str1", "ORD-123456")
	values.Set("merchant_id", "10000100")
	return values
}

func signPayfastITN(values url.Values, passphrase string) url.Values {
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	values.Set("signature", payfastSignature(fields, payfastITNFieldOrder, passphrase))
	return values
}

func TestPayFastParseWebhook(t *testing.T) {
	gw := newTestPayFastGateway()
	ref := BuildReference(payfastRefPrefix, "ORD-123456")
	body := signPayfastITN(payfastITN(ref), "testpassphrase").Encode()

	event, err := gw.ParseWebhook(WebhookRequest{Body: []byte(body)})
	require.NoError(t, err)
	assert.Equal(t, GatewayPayFast, event.Provider)
	assert.Equal(t, ref, event.ProviderRef)
	assert.Equal(t, "ORD-123456", event.OrderNumber)
	assert.True(t, event.Succeeded)
	assert.True(t, event.Amount.Equal(decimal.RequireFromString("150.00")))
}

func TestPayFastParseWebhookNonCompleteStatus(t *testing.T) {
	gw := newTestPayFastGateway()
	values := payfastITN(BuildReference(payfastRefPrefix, "ORD-123456"))
	values.Set("payment_status", "CANCELLED")
	body := signPayfastITN(values, "testpassphrase").Encode()

	event, err := gw.ParseWebhook(WebhookRequest{Body: []byte(body)})
	require.NoError(t, err)
	assert.False(t, event.Succeeded)
}

func TestPayFastParseWebhookTamperedAmount(t *testing.T) {
	gw := newTestPayFastGateway()
	values := signPayfastITN(payfastITN(BuildReference(payfastRefPrefix, "ORD-123456")), "testpassphrase")
	values.Set("amount_gross", "1.00")

	_, err := gw.ParseWebhook(WebhookRequest{Body: []byte(values.Encode())})
	assert.ErrorIs(t, err, ErrWebhookAuthenticity)
}

func TestPayFastParseWebhookMissingSignature(t *testing.T) {
	gw := newTestPayFastGateway()
	body := payfastITN(BuildReference(payfastRefPrefix, "ORD-123456")).Encode()

	_, err := gw.ParseWebhook(WebhookRequest{Body: []byte(body)})
	assert.ErrorIs(t, err, ErrWebhookAuthenticity)
}

func TestPayFastParseWebhookUntrustedSource(t *testing.T) {
	gw := newTestPayFastGateway("197.97.145.144")
	body := signPayfastITN(payfastITN(BuildReference(payfastRefPrefix, "ORD-123456")), "testpassphrase").Encode()

	_, err := gw.ParseWebhook(WebhookRequest{Body: []byte(body), SourceIP: "203.0.113.9"})
	assert.ErrorIs(t, err, ErrWebhookAuthenticity)

	event, err := gw.ParseWebhook(WebhookRequest{Body: []byte(body), SourceIP: "197.97.145.144"})
	require.NoError(t, err)
	assert.True(t, event.Succeeded)
}

func TestPayFastParseWebhookFallsBackToCustomStr(t *testing.T) {
	gw := newTestPayFastGateway()
	values := payfastITN("opaque-provider-ref")
	body := signPayfastITN(values, "testpassphrase").Encode()

	event, err := gw.ParseWebhook(WebhookRequest{Body: []byte(body)})
	require.NoError(t, err)
	assert.Equal(t, "ORD-123456", event.OrderNumber)
}

func TestPayFastAckIsEmptyOK(t *testing.T) {
	ack := newTestPayFastGateway().Ack()
	assert.Equal(t, 200, ack.Status)
	assert.Nil(t, ack.JSON)
	assert.Empty(t, ack.Body)
}
