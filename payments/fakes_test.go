package payments

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/shopspring/decimal"
)

// fakeGateway scripts one adapter's behavior for orchestrator and ingestor
// tests and records how it was called.
type fakeGateway struct {
	name        string
	outcome     *gateways.PaymentOutcome
	chargeErr   error
	chargeCalls int
	lastReq     gateways.PaymentRequest

	event    *gateways.WebhookEvent
	parseErr error
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Charge(ctx context.Context, req gateways.PaymentRequest) (*gateways.PaymentOutcome, error) {
	g.chargeCalls++
	g.lastReq = req
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.outcome, nil
}

func (g *fakeGateway) ParseWebhook(req gateways.WebhookRequest) (*gateways.WebhookEvent, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

func (g *fakeGateway) Ack() gateways.WebhookAck {
	return gateways.WebhookAck{Status: http.StatusOK, JSON: map[string]interface{}{"received": true}}
}

// blockingGateway never answers; it exists to exercise the charge timeout.
type blockingGateway struct {
	name string
}

func (g *blockingGateway) Name() string { return g.name }

func (g *blockingGateway) Charge(ctx context.Context, req gateways.PaymentRequest) (*gateways.PaymentOutcome, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (g *blockingGateway) ParseWebhook(req gateways.WebhookRequest) (*gateways.WebhookEvent, error) {
	return nil, gateways.ErrWebhookIgnored
}

func (g *blockingGateway) Ack() gateways.WebhookAck {
	return gateways.WebhookAck{Status: http.StatusOK}
}

// fakeOrderStore is an in-memory OrderRepository with real CAS semantics.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[uint]*models.Order
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[uint]*models.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *fakeOrderStore) SetPaymentMethod(ctx context.Context, orderID uint, gateway string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	order.PaymentMethod = gateway
	return nil
}

func (s *fakeOrderStore) UpdateStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, ErrOrderNotFound
	}
	if order.Status != expected || !models.CanTransitionOrderStatus(expected, next) {
		return false, nil
	}
	order.Status = next
	return true, nil
}

func (s *fakeOrderStore) UpdatePaymentStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, ErrOrderNotFound
	}
	if order.PaymentStatus != expected || !models.CanTransitionPaymentStatus(expected, next) {
		return false, nil
	}
	order.PaymentStatus = next
	return true, nil
}

// current returns the live row for assertions.
func (s *fakeOrderStore) current(orderID uint) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[orderID]
}

// fakeTxnStore is an in-memory TransactionRepository keyed exactly like the
// database unique index.
type fakeTxnStore struct {
	mu   sync.Mutex
	rows map[string]*models.PaymentTransaction
}

func newFakeTxnStore() *fakeTxnStore {
	return &fakeTxnStore{rows: make(map[string]*models.PaymentTransaction)}
}

func txnKey(provider, ref string) string {
	return provider + "\x00" + ref
}

func (s *fakeTxnStore) FindByProviderRef(ctx context.Context, provider, ref string) (*models.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.rows[txnKey(provider, ref)]
	if !ok {
		return nil, nil
	}
	copied := *txn
	return &copied, nil
}

func (s *fakeTxnStore) InsertIfAbsent(ctx context.Context, txn *models.PaymentTransaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := txnKey(txn.Provider, txn.TransactionID)
	if _, exists := s.rows[key]; exists {
		return false, nil
	}
	copied := *txn
	s.rows[key] = &copied
	return true, nil
}

func (s *fakeTxnStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *fakeTxnStore) all() []*models.PaymentTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	txns := make([]*models.PaymentTransaction, 0, len(s.rows))
	for _, txn := range s.rows {
		txns = append(txns, txn)
	}
	return txns
}

// racingTxnStore simulates the window where a concurrent delivery commits
// between the replay fast-path lookup and the insert: lookups always miss,
// while the wrapped store still enforces the unique key.
type racingTxnStore struct {
	*fakeTxnStore
}

func (s *racingTxnStore) FindByProviderRef(ctx context.Context, provider, ref string) (*models.PaymentTransaction, error) {
	return nil, nil
}

type fakeBuyerDirectory struct {
	buyers map[uint]*Buyer
}

func (d *fakeBuyerDirectory) GetBuyer(ctx context.Context, customerID uint) (*Buyer, error) {
	buyer, ok := d.buyers[customerID]
	if !ok {
		return nil, fmt.Errorf("buyer %d not found", customerID)
	}
	return buyer, nil
}

func pendingOrder(id uint, number, total string) *models.Order {
	return &models.Order{
		ID:            id,
		OrderNumber:   number,
		CustomerID:    42,
		Status:        models.OrderStatusPending,
		Total:         decimal.RequireFromString(total),
		Currency:      "USD",
		PaymentStatus: models.PaymentStatusPending,
	}
}
