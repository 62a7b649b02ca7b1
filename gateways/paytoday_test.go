package gateways

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayTodayGateway(apiURL string) *PayTodayGateway {
	return NewPayTodayGateway(config.PayTodayConfig{
		APIKey:    "pt_test_key",
		SecretKey: "pt_test_secret",
		BaseURL:   apiURL,
	}, "https://shop.example.com")
}

func paytodayRequest() PaymentRequest {
	return PaymentRequest{
		OrderNumber:   "ORD-123456",
		Amount:        decimal.RequireFromString("75.50"),
		CustomerName:  "Ndapewa Amadhila",
		CustomerEmail: "ndapewa@example.com",
		CustomerPhone: "+264811234567",
	}
}

func TestPayTodayChargeMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PaymentRequest)
		field  string
	}{
		{"order", func(r *PaymentRequest) { r.OrderNumber = "" }, "orderId"},
		{"amount", func(r *PaymentRequest) { r.Amount = decimal.Zero }, "amount"},
		{"phone", func(r *PaymentRequest) { r.CustomerPhone = "" }, "customerPhone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
			}))
			defer srv.Close()

			req := paytodayRequest()
			tc.mutate(&req)

			_, err := newTestPayTodayGateway(srv.URL).Charge(context.Background(), req)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
			assert.Zero(t, calls, "validation failures must not reach the provider")
		})
	}
}

func TestPayTodayChargeRedirect(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Bearer pt_test_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "pending",
			"paymentId":  "pt_pay_789",
			"paymentUrl": "https://pay.paytoday.com/p/789",
		})
	}))
	defer srv.Close()

	outcome, err := newTestPayTodayGateway(srv.URL).Charge(context.Background(), paytodayRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedirectRequired, outcome.Kind)
	assert.Equal(t, "pt_pay_789", outcome.ProviderRef)
	assert.Equal(t, "https://pay.paytoday.com/p/789", outcome.RedirectURL)

	assert.Equal(t, "75.50", received["amount"])
	assert.Equal(t, "+264811234567", received["phoneNumber"])
	assert.Equal(t, "https://shop.example.com/v1/payments/webhook/paytoday", received["callbackUrl"])
	metadata, ok := received["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ORD-123456", metadata["orderId"])
}

func TestPayTodayChargeProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"phone number not registered"}`))
	}))
	defer srv.Close()

	_, err := newTestPayTodayGateway(srv.URL).Charge(context.Background(), paytodayRequest())
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, GatewayPayToday, provErr.Gateway)
}

func TestPayTodayChargeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	_, err := newTestPayTodayGateway(srv.URL).Charge(context.Background(), paytodayRequest())
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "network_error", provErr.Code)
}

func signPayTodayBody(body []byte, secret string) http.Header {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	header := http.Header{}
	header.Set("X-PayToday-Signature", hex.EncodeToString(mac.Sum(nil)))
	return header
}

func TestPayTodayParseWebhook(t *testing.T) {
	gw := newTestPayTodayGateway("http://unused")
	ref := BuildReference(paytodayRefPrefix, "ORD-123456")
	body, _ := json.Marshal(map[string]interface{}{
		"reference":  ref,
		"payment_id": "pt_pay_789",
		"status":     "successful",
		"amount":     "75.50",
		"currency":   "NAD",
	})

	event, err := gw.ParseWebhook(WebhookRequest{Body: body, Header: signPayTodayBody(body, "pt_test_secret")})
	require.NoError(t, err)
	assert.Equal(t, GatewayPayToday, event.Provider)
	assert.Equal(t, ref, event.ProviderRef)
	assert.Equal(t, "ORD-123456", event.OrderNumber)
	assert.True(t, event.Succeeded)
	assert.True(t, event.Amount.Equal(decimal.RequireFromString("75.50")))
	assert.Equal(t, "NAD", event.Currency)
}

func TestPayTodayParseWebhookFailedStatus(t *testing.T) {
	gw := newTestPayTodayGateway("http://unused")
	body, _ := json.Marshal(map[string]interface{}{
		"reference": BuildReference(paytodayRefPrefix, "ORD-123456"),
		"status":    "failed",
	})

	event, err := gw.ParseWebhook(WebhookRequest{Body: body, Header: signPayTodayBody(body, "pt_test_secret")})
	require.NoError(t, err)
	assert.False(t, event.Succeeded)
}

func TestPayTodayParseWebhookBadSignature(t *testing.T) {
	gw := newTestPayTodayGateway("http://unused")
	body := []byte(`{"reference":"PT-ORD-123456-1690000000000","status":"successful"}`)

	header := http.Header{}
	header.Set("X-PayToday-Signature", "deadbeef")
	_, err := gw.ParseWebhook(WebhookRequest{Body: body, Header: header})
	assert.ErrorIs(t, err, ErrWebhookAuthenticity)

	_, err = gw.ParseWebhook(WebhookRequest{Body: body, Header: http.Header{}})
	assert.ErrorIs(t, err, ErrWebhookAuthenticity)
}

func TestPayTodayParseWebhookMetadataFallback(t *testing.T) {
	gw := newTestPayTodayGateway("http://unused")
	body, _ := json.Marshal(map[string]interface{}{
		"reference": "opaque-ref",
		"status":    "successful",
		"metadata":  map[string]string{"orderId": "ORD-123456"},
	})

	event, err := gw.ParseWebhook(WebhookRequest{Body: body, Header: signPayTodayBody(body, "pt_test_secret")})
	require.NoError(t, err)
	assert.Equal(t, "ORD-123456", event.OrderNumber)
}
