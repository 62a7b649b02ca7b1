package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
)

// ErrUnknownGateway is returned when the requested gateway identifier is not
// in the registry. This is a configuration error, distinct from a payment
// failure, and is never retried.
var ErrUnknownGateway = errors.New("unknown payment gateway")

// ErrOrderAlreadyPaid is returned when a charge is attempted against an order
// whose payment status has already reached paid.
var ErrOrderAlreadyPaid = errors.New("order has already been paid")

// ErrAmountMismatch is returned when the requested charge amount disagrees
// with the stored order total.
var ErrAmountMismatch = errors.New("amount does not match order total")

const defaultChargeTimeout = 20 * time.Second

// Orchestrator is the single entry point for charging an order through one of
// the registered gateways.
type Orchestrator struct {
	registry      *gateways.Registry
	orders        OrderRepository
	txns          TransactionRepository
	buyers        BuyerDirectory
	chargeTimeout time.Duration
}

// NewOrchestrator wires the orchestrator to its gateway registry and stores.
func NewOrchestrator(registry *gateways.Registry, orders OrderRepository, txns TransactionRepository, buyers BuyerDirectory) *Orchestrator {
	return &Orchestrator{
		registry:      registry,
		orders:        orders,
		txns:          txns,
		buyers:        buyers,
		chargeTimeout: defaultChargeTimeout,
	}
}

// ProcessPayment validates the request for the chosen gateway, dispatches it,
// and persists the resulting transaction. Redirect outcomes leave the order's
// payment status at pending: for redirect gateways the buyer may abandon the
// hosted page, so confirmation is deferred to the webhook ingestor.
func (o *Orchestrator) ProcessPayment(ctx context.Context, gatewayID string, req gateways.PaymentRequest) (*gateways.PaymentOutcome, error) {
	gw, ok := o.registry.Get(gatewayID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGateway, gatewayID)
	}

	order, err := o.orders.GetByNumber(ctx, req.OrderNumber)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}

	if req.Amount.IsZero() {
		req.Amount = order.Total
	} else if !req.Amount.Equal(order.Total) {
		return nil, ErrAmountMismatch
	}
	if req.Currency == "" {
		req.Currency = order.Currency
	}
	o.fillBuyerContact(ctx, order, &req)

	if err := o.orders.SetPaymentMethod(ctx, order.ID, gatewayID); err != nil {
		return nil, err
	}

	chargeCtx, cancel := context.WithTimeout(ctx, o.chargeTimeout)
	defer cancel()

	outcome, err := gw.Charge(chargeCtx, req)
	if err != nil {
		var fieldErr *gateways.FieldError
		if errors.As(err, &fieldErr) {
			// Validation errors propagate so the caller can present
			// field-level feedback. No provider call was made.
			return nil, err
		}
		var provErr *gateways.ProviderError
		if errors.As(err, &provErr) {
			return o.recordFailure(ctx, order, gw.Name(), "", provErr.Code)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(chargeCtx.Err(), context.DeadlineExceeded) {
			// A timed-out call is a failure from our perspective. The order
			// stays pending; the provider's own eventual webhook, if any, is
			// still honored later under the idempotency rule.
			return o.recordFailure(ctx, order, gw.Name(), "", "timeout")
		}
		return nil, err
	}

	switch outcome.Kind {
	case gateways.OutcomeCompleted:
		txn := &models.PaymentTransaction{
			OrderID:       order.ID,
			Provider:      gw.Name(),
			TransactionID: outcome.ProviderRef,
			Amount:        req.Amount,
			Currency:      req.Currency,
			Status:        models.TransactionStatusSuccess,
		}
		if _, err := o.txns.InsertIfAbsent(ctx, txn); err != nil {
			return nil, err
		}
		if err := settleOrderPaid(ctx, o.orders, order); err != nil {
			return nil, err
		}
		utils.LogInfo("Payment completed synchronously for order %s via %s (ref %s)", order.OrderNumber, gw.Name(), outcome.ProviderRef)
		observeOutcome(gw.Name(), outcome.Kind)
		return outcome, nil

	case gateways.OutcomeRedirectRequired:
		// Not paid yet. The redirect payload is returned to the caller
		// unchanged and the order stays pending until the webhook arrives.
		utils.LogInfo("Payment redirect issued for order %s via %s (ref %s)", order.OrderNumber, gw.Name(), outcome.ProviderRef)
		observeOutcome(gw.Name(), outcome.Kind)
		return outcome, nil

	case gateways.OutcomeFailed:
		return o.recordFailure(ctx, order, gw.Name(), outcome.ProviderRef, outcome.ReasonCode)

	default:
		return nil, fmt.Errorf("gateway %s returned unknown outcome kind %q", gw.Name(), outcome.Kind)
	}
}

// recordFailure persists a failed transaction and returns a failed outcome.
// The order itself is left untouched so the buyer may retry.
func (o *Orchestrator) recordFailure(ctx context.Context, order *models.Order, provider, providerRef, reason string) (*gateways.PaymentOutcome, error) {
	if providerRef == "" {
		providerRef = gateways.BuildReference(strings.ToUpper(provider), order.OrderNumber)
	}
	txn := &models.PaymentTransaction{
		OrderID:       order.ID,
		Provider:      provider,
		TransactionID: providerRef,
		Amount:        order.Total,
		Currency:      order.Currency,
		Status:        models.TransactionStatusFailed,
	}
	if _, err := o.txns.InsertIfAbsent(ctx, txn); err != nil {
		return nil, err
	}
	utils.LogError("Payment failed for order %s via %s: %s", order.OrderNumber, provider, reason)
	observeOutcome(provider, gateways.OutcomeFailed)
	return &gateways.PaymentOutcome{
		Kind:        gateways.OutcomeFailed,
		Gateway:     provider,
		ProviderRef: providerRef,
		ReasonCode:  reason,
	}, nil
}

func (o *Orchestrator) fillBuyerContact(ctx context.Context, order *models.Order, req *gateways.PaymentRequest) {
	if o.buyers == nil || order.CustomerID == 0 {
		return
	}
	if req.CustomerEmail != "" && req.CustomerName != "" && req.CustomerPhone != "" {
		return
	}
	buyer, err := o.buyers.GetBuyer(ctx, order.CustomerID)
	if err != nil {
		utils.LogDebug("Buyer lookup failed for customer %d: %v", order.CustomerID, err)
		return
	}
	if req.CustomerEmail == "" {
		req.CustomerEmail = buyer.Email
	}
	if req.CustomerName == "" {
		req.CustomerName = buyer.Name
	}
	if req.CustomerPhone == "" {
		req.CustomerPhone = buyer.Phone
	}
}

// settleOrderPaid advances an order to paid/processing. Both the synchronous
// completion path and the webhook path converge here; the CAS conditions make
// the transition idempotent.
func settleOrderPaid(ctx context.Context, orders OrderRepository, order *models.Order) error {
	applied, err := orders.UpdatePaymentStatusCAS(ctx, order.ID, models.PaymentStatusPending, models.PaymentStatusPaid)
	if err != nil {
		return err
	}
	if !applied {
		utils.LogDebug("Order %s payment status already advanced past pending", order.OrderNumber)
	}
	if _, err := orders.UpdateStatusCAS(ctx, order.ID, models.OrderStatusPending, models.OrderStatusProcessing); err != nil {
		return err
	}
	return nil
}
