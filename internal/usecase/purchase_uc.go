// File: internal/usecase/purchase_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"museum-ticketing/internal/clock"
	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/adapter"
	"museum-ticketing/internal/domain/ports/repository"
	"museum-ticketing/internal/infra/metrics"
)

// Compile-time check
var _ PurchaseUseCase = (*purchaseUC)(nil)

type PurchaseUseCase interface {
	// Initiate registers an order with the gateway, persists a pending
	// purchase keyed by the gateway's order id, and returns the hosted
	// checkout URL. No local record is written if the gateway rejects.
	Initiate(ctx context.Context, userID, ticketTypeID, museumID string, amountCents int64, currency string) (*model.Purchase, string, error)
	// Settle applies the gateway's verdict for an order. Duplicate
	// deliveries succeed without further mutation.
	Settle(ctx context.Context, orderID int64, success bool) (*model.Purchase, error)
	// ListByUser returns the caller's purchases, refreshing stale
	// expiration flags on the way out.
	ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error)
}

type purchaseUC struct {
	purchases repository.PurchaseRepository
	tickets   repository.TicketTypeRepository
	users     repository.UserRepository
	gateway   adapter.PaymentGateway
	tm        repository.TransactionManager
	clk       clock.Clock
	log       *zerolog.Logger
}

func NewPurchaseUseCase(
	purchases repository.PurchaseRepository,
	tickets repository.TicketTypeRepository,
	users repository.UserRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	clk clock.Clock,
	logger *zerolog.Logger,
) *purchaseUC {
	l := logger.With().Str("component", "PurchaseUC").Logger()
	return &purchaseUC{
		purchases: purchases,
		tickets:   tickets,
		users:     users,
		gateway:   gateway,
		tm:        tm,
		clk:       clk,
		log:       &l,
	}
}

func (u *purchaseUC) Initiate(ctx context.Context, userID, ticketTypeID, museumID string, amountCents int64, currency string) (*model.Purchase, string, error) {
	if userID == "" || ticketTypeID == "" || museumID == "" || amountCents <= 0 || currency == "" {
		return nil, "", domain.ErrInvalidArgument
	}

	ticket, err := u.tickets.FindByID(ctx, nil, ticketTypeID)
	if err != nil {
		return nil, "", fmt.Errorf("find ticket type: %w", err)
	}
	if ticket.MuseumID != museumID {
		return nil, "", domain.ErrInvalidArgument
	}

	buyer, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, "", fmt.Errorf("find buyer: %w", err)
	}

	// Gateway first: the pending row is written only for orders the
	// gateway accepted, so a rejected order leaves no orphaned state.
	orderID, err := u.gateway.CreateOrder(ctx, amountCents, currency)
	if err != nil {
		return nil, "", fmt.Errorf("register order: %w", err)
	}
	token, err := u.gateway.PaymentKey(ctx, orderID, amountCents, currency, adapter.BillingData{
		FirstName: buyer.FirstName,
		LastName:  buyer.LastName,
		Email:     buyer.Email,
		Phone:     buyer.Phone,
	})
	if err != nil {
		return nil, "", fmt.Errorf("request payment key: %w", err)
	}

	p, err := model.NewPurchase(orderID, userID, ticketTypeID, museumID, amountCents, currency, ticket.LimitHours, u.clk.Now())
	if err != nil {
		return nil, "", err
	}
	if err := u.purchases.Create(ctx, nil, p); err != nil {
		return nil, "", fmt.Errorf("persist pending purchase: %w", err)
	}

	metrics.IncPurchase(string(model.SettlementPending))
	u.log.Info().Int64("order_id", orderID).Str("user_id", userID).Msg("purchase initiated")
	return p, u.gateway.CheckoutURL(token), nil
}

func (u *purchaseUC) Settle(ctx context.Context, orderID int64, success bool) (*model.Purchase, error) {
	target := model.SettlementSettled
	if !success {
		target = model.SettlementFailed
	}

	var p *model.Purchase
	var applied bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		p, err = u.purchases.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if p.State != model.SettlementPending {
			// Gateways retry notifications; a repeated or contradicting
			// delivery after the first verdict is acknowledged untouched.
			u.log.Debug().Int64("order_id", orderID).Str("state", string(p.State)).Msg("duplicate settlement notification")
			return nil
		}
		applied, err = u.purchases.SettleFromPending(ctx, tx, orderID, target)
		if err != nil {
			return fmt.Errorf("settle order %d: %w", orderID, err)
		}
		if applied {
			p.State = target
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return p, nil
	}

	metrics.IncPurchase(string(target))
	if target == model.SettlementSettled {
		metrics.AddPurchaseRevenue(p.Currency, p.AmountCents)
	}
	u.log.Info().Int64("order_id", orderID).Bool("success", success).Msg("purchase settled")
	return p, nil
}

func (u *purchaseUC) ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	list, err := u.purchases.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	now := u.clk.Now()
	for _, p := range list {
		if p.State != model.SettlementSettled || p.ExpiredExplicitly || !p.ExpiredAt(now) {
			continue
		}
		// Stale flag: persist before returning so the listing and any
		// later access check agree. A conflict means another path beat
		// us to it, which is the same outcome.
		if err := u.purchases.MarkExpired(ctx, nil, p.OrderID, p.Version); err != nil && !errors.Is(err, domain.ErrConflict) {
			u.log.Warn().Err(err).Int64("order_id", p.OrderID).Msg("lazy expire during listing failed")
			continue
		}
		p.ExpiredExplicitly = true
		metrics.IncPurchasesExpired(1)
	}
	return list, nil
}
