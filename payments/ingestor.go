package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
)

// ErrWebhookAmountMismatch is returned when a success callback carries an
// amount or currency that disagrees with the stored order. It is treated as
// part of the authenticity gate: the callback is rejected with no mutation.
var ErrWebhookAmountMismatch = errors.New("webhook amount does not match order")

// Ingestor receives asynchronous provider callbacks, verifies authenticity,
// maps them back to an internal order, and drives the order state machine
// idempotently. Providers deliver at least once, so every path here must
// tolerate replays indefinitely.
type Ingestor struct {
	registry *gateways.Registry
	orders   OrderRepository
	txns     TransactionRepository
}

// NewIngestor wires the ingestor to its gateway registry and stores.
func NewIngestor(registry *gateways.Registry, orders OrderRepository, txns TransactionRepository) *Ingestor {
	return &Ingestor{registry: registry, orders: orders, txns: txns}
}

// Ingest processes one inbound callback for the given provider. On success it
// returns the acknowledgement shape that provider expects; duplicates are
// acknowledged identically with no further mutation. Authenticity failures
// (including amount mismatches) return an error and mutate nothing.
func (i *Ingestor) Ingest(ctx context.Context, providerID string, req gateways.WebhookRequest) (gateways.WebhookAck, error) {
	gw, ok := i.registry.Get(providerID)
	if !ok {
		return gateways.WebhookAck{}, fmt.Errorf("%w: %s", ErrUnknownGateway, providerID)
	}

	event, err := gw.ParseWebhook(req)
	if err != nil {
		if errors.Is(err, gateways.ErrWebhookIgnored) {
			observeWebhook(providerID, "ignored")
			return gw.Ack(), nil
		}
		if errors.Is(err, gateways.ErrWebhookAuthenticity) {
			utils.LogError("Rejected %s webhook: authenticity check failed", providerID)
			observeWebhook(providerID, "rejected")
		}
		return gateways.WebhookAck{}, err
	}

	order, err := i.resolveOrder(ctx, event)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			// Nothing to mutate. Acknowledge so the provider stops retrying a
			// callback we will never be able to apply.
			utils.LogError("No order found for %s webhook ref %s", providerID, event.ProviderRef)
			observeWebhook(providerID, "orphaned")
			return gw.Ack(), nil
		}
		return gateways.WebhookAck{}, err
	}

	if event.Succeeded {
		if err := i.checkAmount(event, order); err != nil {
			utils.LogError("Rejected %s webhook for order %s: %v", providerID, order.OrderNumber, err)
			observeWebhook(providerID, "rejected")
			return gateways.WebhookAck{}, err
		}
	}

	// Replay fast path. The InsertIfAbsent below is the authoritative
	// serialization point; this lookup just avoids building the row again.
	existing, err := i.txns.FindByProviderRef(ctx, event.Provider, event.ProviderRef)
	if err != nil {
		return gateways.WebhookAck{}, err
	}
	if existing != nil {
		utils.LogInfo("Duplicate %s webhook for ref %s acknowledged without mutation", providerID, event.ProviderRef)
		observeWebhook(providerID, "duplicate")
		return gw.Ack(), nil
	}

	status := models.TransactionStatusFailed
	if event.Succeeded {
		status = models.TransactionStatusSuccess
	}
	txn := &models.PaymentTransaction{
		OrderID:       order.ID,
		Provider:      event.Provider,
		TransactionID: event.ProviderRef,
		Amount:        event.Amount,
		Currency:      orderCurrency(event, order),
		Status:        status,
	}
	inserted, err := i.txns.InsertIfAbsent(ctx, txn)
	if err != nil {
		return gateways.WebhookAck{}, err
	}
	if !inserted {
		// A concurrent delivery won the race. Same answer as any duplicate.
		utils.LogInfo("Concurrent duplicate %s webhook for ref %s acknowledged", providerID, event.ProviderRef)
		observeWebhook(providerID, "duplicate")
		return gw.Ack(), nil
	}

	if event.Succeeded {
		if err := settleOrderPaid(ctx, i.orders, order); err != nil {
			return gateways.WebhookAck{}, err
		}
		utils.LogInfo("Order %s confirmed paid via %s webhook (ref %s)", order.OrderNumber, providerID, event.ProviderRef)
		observeWebhook(providerID, "confirmed")
	} else {
		// Failure or cancellation: the attempt is logged but the order stays
		// pending so the buyer may retry.
		utils.LogInfo("Order %s payment attempt failed via %s webhook (ref %s)", order.OrderNumber, providerID, event.ProviderRef)
		observeWebhook(providerID, "failed")
	}

	return gw.Ack(), nil
}

// resolveOrder maps a callback to an internal order: preferred path is the
// order number parsed out of the adapter-generated reference, with the
// provider's pass-through metadata as fallback.
func (i *Ingestor) resolveOrder(ctx context.Context, event *gateways.WebhookEvent) (*models.Order, error) {
	if event.OrderNumber == "" {
		return nil, ErrOrderNotFound
	}
	return i.orders.GetByNumber(ctx, event.OrderNumber)
}

func (i *Ingestor) checkAmount(event *gateways.WebhookEvent, order *models.Order) error {
	if !event.Amount.IsZero() && !event.Amount.Equal(order.Total) {
		return fmt.Errorf("%w: got %s, want %s", ErrWebhookAmountMismatch, event.Amount.StringFixed(2), order.Total.StringFixed(2))
	}
	if event.Currency != "" && event.Currency != order.Currency {
		return fmt.Errorf("%w: got currency %s, want %s", ErrWebhookAmountMismatch, event.Currency, order.Currency)
	}
	return nil
}

func orderCurrency(event *gateways.WebhookEvent, order *models.Order) string {
	if event.Currency != "" {
		return event.Currency
	}
	return order.Currency
}
