package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/finbase/corebank/internal/adapter/http"
	"github.com/finbase/corebank/internal/adapter/http/handler"
	"github.com/finbase/corebank/internal/adapter/http/middleware"
	postgresRepo "github.com/finbase/corebank/internal/adapter/repository/postgres"
	redisRepo "github.com/finbase/corebank/internal/adapter/repository/redis"
	"github.com/finbase/corebank/internal/infrastructure/config"
	"github.com/finbase/corebank/internal/infrastructure/logger"
	"github.com/finbase/corebank/internal/infrastructure/logging"
	"github.com/finbase/corebank/internal/infrastructure/metrics"
	"github.com/finbase/corebank/internal/infrastructure/notify"
	"github.com/finbase/corebank/internal/infrastructure/postgres"
	"github.com/finbase/corebank/internal/infrastructure/redis"
	"github.com/finbase/corebank/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	appLogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := run(cfg, log, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger, appLogger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Msg("migrations applied")

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	sessionStore := redisRepo.NewSessionStore(redisClient)

	idGen := postgresRepo.NewULIDGenerator()
	refGen := postgresRepo.NewReferenceGenerator()
	retrier := postgresRepo.NewRetrier()
	retrier.OnRetry = m.DBRetries.Inc

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, journalRepo, outboxRepo, refGen, idGen, retrier)
	ledgerUC.OnReferenceCollision = m.ReferenceCollisions.Inc
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, outboxRepo, ledgerUC, refGen, idGen, retrier)
	transferUC.OnReferenceCollision = m.ReferenceCollisions.Inc
	reconciliationUC := usecase.NewReconciliationUseCase(ledgerRepo)

	// Background workers
	runner := usecase.NewScheduledTransferRunner(usecase.RunnerConfig{
		Transfers:    transferUC,
		TransferRepo: transferRepo,
		Logger:       appLogger.Logger,
		Interval:     cfg.SchedulerInterval,
		BatchSize:    cfg.SchedulerBatchSize,
		MaxElapsed:   cfg.SchedulerMaxElapsed,
		OnPermanentFailure: func(string) {
			m.ScheduledTransfersDropped.Inc()
		},
	})

	dispatcher := notify.NewDispatcher(notify.Config{
		OutboxRepo: outboxRepo,
		Notifier:   notify.NewLogNotifier(appLogger.Logger),
		Logger:     appLogger.Logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		OnPublish: func() {
			m.EventsPublished.Inc()
		},
		OnBacklog: func(pending int) {
			m.EventsUnpublished.Set(float64(pending))
		},
	})

	// Sample pool usage for the connections gauge.
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.DBConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()

	go func() {
		if err := runner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduled transfer runner stopped")
		}
	}()

	go func() {
		if err := dispatcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("outbox dispatcher stopped")
		}
	}()

	// HTTP surface
	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, appLogger),
		OperationHandler: handler.NewOperationHandler(ledgerUC, m, appLogger),
		TransferHandler:  handler.NewTransferHandler(transferUC, m, appLogger),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC, m, appLogger),
		HealthHandler: handler.NewHealthHandler(
			handler.PingerFunc(pool.Ping),
			handler.PingerFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		),
		Logger:      log,
		Metrics:     m,
		Idempotency: middleware.NewIdempotencyMiddleware(idempotencyStore),
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	if cfg.AuthEnabled {
		routerCfg.Auth = middleware.NewAuthMiddleware(sessionStore)
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("http server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info().Msg("server stopped")

	return nil
}
