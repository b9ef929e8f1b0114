package payment

import (
	"context"
	"fmt"
	"sync"

	"museum-ticketing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
type NoopPaymentGateway struct {
	mu     sync.Mutex
	seq    int64
	orders map[int64]int64 // order id -> amount cents
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{orders: make(map[int64]int64)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateOrder(ctx context.Context, amountCents int64, currency string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.orders[g.seq] = amountCents
	return g.seq, nil
}

func (g *NoopPaymentGateway) PaymentKey(ctx context.Context, orderID int64, amountCents int64, currency string, billing adapter.BillingData) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	exp, ok := g.orders[orderID]
	if !ok {
		return "", fmt.Errorf("noop: order %d not found", orderID)
	}
	if exp != amountCents {
		return "", fmt.Errorf("noop: amount mismatch: expected %d got %d", exp, amountCents)
	}
	return fmt.Sprintf("noop-key-%d", orderID), nil
}

func (g *NoopPaymentGateway) CheckoutURL(token string) string {
	return "https://example.test/pay/" + token
}
