//go:build !integration

package web_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

const testJWTSecret = "unit-test-secret"

// bearerFor issues a short-lived HS256 token for the given subject.
func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

// Function-field mocks for the use case interfaces.

type mockPurchaseUC struct {
	InitiateFunc   func(ctx context.Context, userID, ticketTypeID, museumID string, amountCents int64, currency string) (*model.Purchase, string, error)
	SettleFunc     func(ctx context.Context, orderID int64, success bool) (*model.Purchase, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]*model.Purchase, error)
}

func (m *mockPurchaseUC) Initiate(ctx context.Context, userID, ticketTypeID, museumID string, amountCents int64, currency string) (*model.Purchase, string, error) {
	return m.InitiateFunc(ctx, userID, ticketTypeID, museumID, amountCents, currency)
}

func (m *mockPurchaseUC) Settle(ctx context.Context, orderID int64, success bool) (*model.Purchase, error) {
	return m.SettleFunc(ctx, orderID, success)
}

func (m *mockPurchaseUC) ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error) {
	return m.ListByUserFunc(ctx, userID)
}

type mockUsageUC struct {
	ReportFunc func(ctx context.Context, userID string, orderID int64, minutes int) (int, bool, error)
}

func (m *mockUsageUC) Report(ctx context.Context, userID string, orderID int64, minutes int) (int, bool, error) {
	return m.ReportFunc(ctx, userID, orderID, minutes)
}

type mockAccessUC struct {
	CheckFunc func(ctx context.Context, userID string, orderID int64) (*usecase.AccessDecision, error)
}

func (m *mockAccessUC) Check(ctx context.Context, userID string, orderID int64) (*usecase.AccessDecision, error) {
	return m.CheckFunc(ctx, userID, orderID)
}

type mockCatalogUC struct {
	ListMuseumsFunc     func(ctx context.Context) ([]*model.Museum, error)
	ListTicketTypesFunc func(ctx context.Context, museumID string) ([]*model.TicketType, error)
}

func (m *mockCatalogUC) ListMuseums(ctx context.Context) ([]*model.Museum, error) {
	return m.ListMuseumsFunc(ctx)
}

func (m *mockCatalogUC) ListTicketTypes(ctx context.Context, museumID string) ([]*model.TicketType, error) {
	return m.ListTicketTypesFunc(ctx, museumID)
}
