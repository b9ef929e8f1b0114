package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"museum-ticketing/internal/infra/redis"
	"museum-ticketing/internal/usecase"
)

// Server wires the public HTTP API to the purchase lifecycle use cases.
type Server struct {
	purchaseUC usecase.PurchaseUseCase
	usageUC    usecase.UsageUseCase
	accessUC   usecase.AccessUseCase
	catalogUC  usecase.CatalogUseCase

	auth       *AuthManager
	limiter    *redis.RateLimiter
	rateLimit  int
	rateWindow time.Duration
	hmacSecret string
	log        *zerolog.Logger
}

type ServerOpts struct {
	RateLimit  int
	RateWindow time.Duration
	HMACSecret string
}

func NewServer(
	purchaseUC usecase.PurchaseUseCase,
	usageUC usecase.UsageUseCase,
	accessUC usecase.AccessUseCase,
	catalogUC usecase.CatalogUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	opts ServerOpts,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		purchaseUC: purchaseUC,
		usageUC:    usageUC,
		accessUC:   accessUC,
		catalogUC:  catalogUC,
		auth:       auth,
		limiter:    limiter,
		rateLimit:  opts.RateLimit,
		rateWindow: opts.RateWindow,
		hmacSecret: opts.HMACSecret,
		log:        &l,
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The gateway authenticates with its HMAC, not a bearer token.
		r.Post("/payments/paymob/callback", s.handlePaymobCallback)

		r.Get("/museums", s.handleListMuseums)
		r.Get("/museums/{museumID}/ticket-types", s.handleListTicketTypes)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/purchases", s.handleCreatePurchase)
			r.Get("/purchases", s.handleListPurchases)
			r.Post("/purchases/{orderID}/usage", s.handleUsageReport)
			r.Get("/purchases/{orderID}/access", s.handleAccessCheck)
		})
	})

	return r
}
