//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/adapter"
	"museum-ticketing/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger so test output stays
// readable.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// memPurchaseRepo is an in-memory PurchaseRepository that enforces the
// same version discipline as the Postgres implementation, so the
// optimistic retry loops in the use cases are exercised for real.
type memPurchaseRepo struct {
	mu    sync.Mutex
	store map[int64]*model.Purchase

	findErr   error // simulate read failures
	updateErr error // simulate write failures (UpdateUsage / MarkExpired)
	markCalls int
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{store: make(map[int64]*model.Purchase)}
}

func (m *memPurchaseRepo) Create(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.OrderID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	m.store[p.OrderID] = &cp
	return nil
}

func (m *memPurchaseRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID int64) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.store[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (m *memPurchaseRepo) ListSettledUnexpired(ctx context.Context, tx repository.Tx, limit int) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, p := range m.store {
		if p.State == model.SettlementSettled && !p.ExpiredExplicitly {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPurchaseRepo) SettleFromPending(ctx context.Context, tx repository.Tx, orderID int64, state model.SettlementState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[orderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.State != model.SettlementPending {
		return false, nil
	}
	p.State = state
	p.Version++
	return true, nil
}

func (m *memPurchaseRepo) UpdateUsage(ctx context.Context, tx repository.Tx, orderID int64, version, usedMinutes int, expired bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.store[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Version != version {
		return domain.ErrConflict
	}
	p.UsedMinutes = usedMinutes
	p.ExpiredExplicitly = p.ExpiredExplicitly || expired
	p.Version++
	return nil
}

func (m *memPurchaseRepo) MarkExpired(ctx context.Context, tx repository.Tx, orderID int64, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.store[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Version != version || p.ExpiredExplicitly {
		return domain.ErrConflict
	}
	p.ExpiredExplicitly = true
	p.Version++
	return nil
}

// get returns the stored record for assertions.
func (m *memPurchaseRepo) get(orderID int64) *model.Purchase {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[orderID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// put seeds a record directly, bypassing the version discipline.
func (m *memPurchaseRepo) put(p *model.Purchase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.OrderID] = &cp
}

// memTicketTypeRepo holds ticket types by id.
type memTicketTypeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.TicketType
}

func newMemTicketTypeRepo() *memTicketTypeRepo {
	return &memTicketTypeRepo{store: make(map[string]*model.TicketType)}
}

func (m *memTicketTypeRepo) Save(ctx context.Context, tx repository.Tx, t *model.TicketType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTicketTypeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTicketTypeRepo) ListByMuseum(ctx context.Context, tx repository.Tx, museumID string) ([]*model.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.TicketType
	for _, t := range m.store {
		if t.MuseumID == museumID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memMuseumRepo holds museums by id.
type memMuseumRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Museum
}

func newMemMuseumRepo() *memMuseumRepo {
	return &memMuseumRepo{store: make(map[string]*model.Museum)}
}

func (m *memMuseumRepo) Save(ctx context.Context, tx repository.Tx, mus *model.Museum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mus
	m.store[mus.ID] = &cp
	return nil
}

func (m *memMuseumRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Museum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mus, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *mus
	return &cp, nil
}

func (m *memMuseumRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Museum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Museum
	for _, mus := range m.store {
		cp := *mus
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memUserRepo holds users by id.
type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// memTxManager runs the callback without a real transaction; the
// in-memory repos are already atomic per call.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// MockPaymentGateway lets each test override individual calls.
type MockPaymentGateway struct {
	mu          sync.Mutex
	nextOrderID int64

	CreateOrderFunc func(ctx context.Context, amountCents int64, currency string) (int64, error)
	PaymentKeyFunc  func(ctx context.Context, orderID, amountCents int64, currency string, billing adapter.BillingData) (string, error)
}

func (g *MockPaymentGateway) Name() string { return "mock" }

func (g *MockPaymentGateway) CreateOrder(ctx context.Context, amountCents int64, currency string) (int64, error) {
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, amountCents, currency)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextOrderID++
	return g.nextOrderID, nil
}

func (g *MockPaymentGateway) PaymentKey(ctx context.Context, orderID, amountCents int64, currency string, billing adapter.BillingData) (string, error) {
	if g.PaymentKeyFunc != nil {
		return g.PaymentKeyFunc(ctx, orderID, amountCents, currency, billing)
	}
	return fmt.Sprintf("token-%d", orderID), nil
}

func (g *MockPaymentGateway) CheckoutURL(token string) string {
	return "https://checkout.example/" + token
}
