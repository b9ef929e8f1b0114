package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/infra/logging"
	"museum-ticketing/internal/infra/payment"
	"museum-ticketing/internal/infra/redis"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to HTTP status codes. Anything
// unrecognized is a 500 with a generic body so internals don't leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidSignature):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrExpired), errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
	case errors.Is(err, domain.ErrGatewayFailure):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payment gateway unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

type purchaseDTO struct {
	OrderID     int64  `json:"order_id"`
	TicketType  string `json:"ticket_type_id"`
	MuseumID    string `json:"museum_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	LimitHours  int    `json:"time_limit_hours"`
	State       string `json:"state"`
	Expired     bool   `json:"expired"`
	UsedMinutes int    `json:"used_minutes"`
	CreatedAt   string `json:"created_at"`
}

func toPurchaseDTO(p *model.Purchase) purchaseDTO {
	return purchaseDTO{
		OrderID:     p.OrderID,
		TicketType:  p.TicketTypeID,
		MuseumID:    p.MuseumID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		LimitHours:  p.LimitHours,
		State:       string(p.State),
		Expired:     p.ExpiredExplicitly,
		UsedMinutes: p.UsedMinutes,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createPurchaseRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	MuseumID     string `json:"museum_id"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

type createPurchaseResponse struct {
	Purchase    purchaseDTO `json:"purchase"`
	CheckoutURL string      `json:"checkout_url"`
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	var req createPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	p, checkoutURL, err := s.purchaseUC.Initiate(r.Context(), userID, req.TicketTypeID, req.MuseumID, req.AmountCents, req.Currency)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("purchase initiation failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createPurchaseResponse{
		Purchase:    toPurchaseDTO(p),
		CheckoutURL: checkoutURL,
	})
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	purchases, err := s.purchaseUC.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]purchaseDTO, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchases": out})
}

// paymobCallbackBody is the envelope Paymob posts; only TRANSACTION
// deliveries carry a settlement verdict.
type paymobCallbackBody struct {
	Type string                       `json:"type"`
	Obj  *payment.CallbackTransaction `json:"obj"`
}

func (s *Server) handlePaymobCallback(w http.ResponseWriter, r *http.Request) {
	signature := r.URL.Query().Get("hmac")

	var body paymobCallbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}
	if body.Type != "TRANSACTION" || body.Obj == nil {
		// Acknowledge non-transaction notifications without acting.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if !payment.VerifyCallbackHMAC(s.hmacSecret, body.Obj, signature) {
		s.log.Warn().Int64("order_id", body.Obj.Order.ID).Msg("callback signature rejected")
		writeError(w, domain.ErrInvalidSignature)
		return
	}

	if body.Obj.Pending {
		// Not a final verdict yet; Paymob will deliver another
		// callback once the transaction resolves.
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
		return
	}

	ctx := logging.WithOrderID(r.Context(), body.Obj.Order.ID)
	success := body.Obj.Success && !body.Obj.ErrorOccured
	p, err := s.purchaseUC.Settle(ctx, body.Obj.Order.ID, success)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "state": string(p.State)})
}

type usageReportRequest struct {
	Minutes int `json:"minutes"`
}

type usageReportResponse struct {
	UsedMinutes int  `json:"used_minutes"`
	Expired     bool `json:"expired"`
}

func (s *Server) handleUsageReport(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	if s.limiter != nil {
		allowed, lerr := s.limiter.Allow(r.Context(), redis.UsageReportKey(orderID), s.rateLimit, s.rateWindow)
		if lerr != nil {
			s.log.Error().Err(lerr).Msg("rate limiter unavailable")
		} else if !allowed {
			writeError(w, domain.ErrRateLimited)
			return
		}
	}

	var req usageReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	used, expired, err := s.usageUC.Report(r.Context(), userID, orderID, req.Minutes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usageReportResponse{UsedMinutes: used, Expired: expired})
}

type accessCheckResponse struct {
	Granted          bool   `json:"granted"`
	Reason           string `json:"reason,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

func (s *Server) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	decision, err := s.accessUC.Check(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accessCheckResponse{
		Granted:          decision.Granted,
		Reason:           string(decision.Reason),
		RemainingSeconds: int64(decision.Remaining.Seconds()),
	})
}

type museumDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type ticketTypeDTO struct {
	ID          string `json:"id"`
	MuseumID    string `json:"museum_id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	LimitHours  int    `json:"time_limit_hours"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListMuseums(w http.ResponseWriter, r *http.Request) {
	museums, err := s.catalogUC.ListMuseums(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]museumDTO, 0, len(museums))
	for _, m := range museums {
		out = append(out, museumDTO{ID: m.ID, Name: m.Name, City: m.City})
	}
	writeJSON(w, http.StatusOK, map[string]any{"museums": out})
}

func (s *Server) handleListTicketTypes(w http.ResponseWriter, r *http.Request) {
	museumID := chi.URLParam(r, "museumID")

	tickets, err := s.catalogUC.ListTicketTypes(r.Context(), museumID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]ticketTypeDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketTypeDTO{
			ID:          t.ID,
			MuseumID:    t.MuseumID,
			Name:        t.Name,
			PriceCents:  t.PriceCents,
			Currency:    t.Currency,
			LimitHours:  t.LimitHours,
			Description: t.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ticket_types": out})
}
