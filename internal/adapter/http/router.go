package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finbase/corebank/internal/adapter/http/handler"
	"github.com/finbase/corebank/internal/adapter/http/middleware"
	"github.com/finbase/corebank/internal/infrastructure/metrics"
)

// RouterConfig carries the handlers and middleware the router wires up.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	OperationHandler *handler.OperationHandler
	TransferHandler  *handler.TransferHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler

	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	// Idempotency is applied to mutating routes when set.
	Idempotency *middleware.IdempotencyMiddleware
	// Auth guards the API when set; probes and metrics stay open.
	Auth *middleware.AuthMiddleware
	// RateLimiter is applied to the API when set.
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Wrap)
		}

		if cfg.Auth != nil {
			api.Use(cfg.Auth.Wrap)
		}

		if cfg.Idempotency != nil {
			api.Use(cfg.Idempotency.Wrap)
		}

		api.Route("/accounts", func(accounts chi.Router) {
			accounts.Post("/", cfg.AccountHandler.Open)
			accounts.Get("/", cfg.AccountHandler.List)

			accounts.Route("/{id}", func(account chi.Router) {
				account.Get("/", cfg.OperationHandler.GetAccount)
				account.Post("/status", cfg.AccountHandler.SetStatus)
				account.Post("/deposits", cfg.OperationHandler.Deposit)
				account.Post("/withdrawals", cfg.OperationHandler.Withdraw)
				account.Get("/entries", cfg.OperationHandler.ListEntries)
				account.Get("/transfers", cfg.TransferHandler.ListByAccount)
			})
		})

		api.Route("/transfers", func(transfers chi.Router) {
			transfers.Post("/", cfg.TransferHandler.Create)
			transfers.Get("/{id}", cfg.TransferHandler.Get)
			transfers.Post("/{id}/cancel", cfg.TransferHandler.Cancel)
		})

		api.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
