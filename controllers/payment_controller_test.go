package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/payments"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway scripts the adapter behind the orchestrator for handler tests.
type stubGateway struct {
	name      string
	outcome   *gateways.PaymentOutcome
	chargeErr error
}

func (g *stubGateway) Name() string { return g.name }

func (g *stubGateway) Charge(ctx context.Context, req gateways.PaymentRequest) (*gateways.PaymentOutcome, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.outcome, nil
}

func (g *stubGateway) ParseWebhook(req gateways.WebhookRequest) (*gateways.WebhookEvent, error) {
	return nil, gateways.ErrWebhookIgnored
}

func (g *stubGateway) Ack() gateways.WebhookAck {
	return gateways.WebhookAck{Status: http.StatusOK}
}

type memOrderRepo struct {
	order *models.Order
}

func (r *memOrderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	if r.order != nil && r.order.ID == id {
		copied := *r.order
		return &copied, nil
	}
	return nil, payments.ErrOrderNotFound
}

func (r *memOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if r.order != nil && r.order.OrderNumber == orderNumber {
		copied := *r.order
		return &copied, nil
	}
	return nil, payments.ErrOrderNotFound
}

func (r *memOrderRepo) SetPaymentMethod(ctx context.Context, orderID uint, gateway string) error {
	r.order.PaymentMethod = gateway
	return nil
}

func (r *memOrderRepo) UpdateStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error) {
	if r.order.Status != expected {
		return false, nil
	}
	r.order.Status = next
	return true, nil
}

func (r *memOrderRepo) UpdatePaymentStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error) {
	if r.order.PaymentStatus != expected {
		return false, nil
	}
	r.order.PaymentStatus = next
	return true, nil
}

type memTxnRepo struct {
	txns []*models.PaymentTransaction
}

func (r *memTxnRepo) FindByProviderRef(ctx context.Context, provider, ref string) (*models.PaymentTransaction, error) {
	return nil, nil
}

func (r *memTxnRepo) InsertIfAbsent(ctx context.Context, txn *models.PaymentTransaction) (bool, error) {
	copied := *txn
	r.txns = append(r.txns, &copied)
	return true, nil
}

func paymentTestRouter(gw gateways.Gateway) (*gin.Engine, *memOrderRepo, *memTxnRepo) {
	gin.SetMode(gin.TestMode)
	orders := &memOrderRepo{order: &models.Order{
		ID:            1,
		OrderNumber:   "ORD-123456",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Total:         decimal.RequireFromString("49.99"),
		Currency:      "USD",
	}}
	txns := &memTxnRepo{}
	Orchestrator = payments.NewOrchestrator(gateways.NewRegistry(gw), orders, txns, nil)
	r := gin.New()
	r.POST("/v1/payments/:gateway", ProcessPayment)
	return r, orders, txns
}

func postPayment(r *gin.Engine, gateway string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(gin.H{"order_id": "ORD-123456", "amount": 49.99})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/"+gateway, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestProcessPaymentProviderFailureAnswers500(t *testing.T) {
	gw := &stubGateway{name: "dop", chargeErr: &gateways.ProviderError{
		Gateway: "dop",
		Code:    "card_declined",
		Message: "card declined",
	}}
	r, orders, txns := paymentTestRouter(gw)

	w := postPayment(r, "dop")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The body still carries the failed outcome so the client can show the
	// reason code.
	var resp utils.StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, gateways.OutcomeFailed, data["kind"])
	assert.Equal(t, "card_declined", data["reason_code"])

	// The attempt is recorded and the order stays retryable.
	require.Len(t, txns.txns, 1)
	assert.Equal(t, models.TransactionStatusFailed, txns.txns[0].Status)
	assert.Equal(t, models.PaymentStatusPending, orders.order.PaymentStatus)
}

func TestProcessPaymentCompletedAnswers200(t *testing.T) {
	gw := &stubGateway{name: "stripe", outcome: &gateways.PaymentOutcome{
		Kind:        gateways.OutcomeCompleted,
		Gateway:     "stripe",
		ProviderRef: "pi_123",
	}}
	r, orders, _ := paymentTestRouter(gw)

	w := postPayment(r, "stripe")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, gateways.OutcomeCompleted, data["kind"])
	assert.Equal(t, models.PaymentStatusPaid, orders.order.PaymentStatus)
}

func TestProcessPaymentUnknownGatewayAnswers400(t *testing.T) {
	gw := &stubGateway{name: "stripe"}
	r, _, _ := paymentTestRouter(gw)

	w := postPayment(r, "paypal")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
