package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

// Notifier delivers a single outbox event to an external system. Delivery is
// fire-and-forget from the ledger's point of view: events are dispatched only
// after their unit of work committed, and a failed delivery never affects the
// committed operation.
type Notifier interface {
	Notify(ctx context.Context, event *domain.OutboxEvent) error
}

// Dispatcher polls the outbox and hands committed events to a Notifier.
type Dispatcher struct {
	outboxRepo usecase.OutboxRepository
	notifier   Notifier
	logger     *slog.Logger
	batchSize  int
	interval   time.Duration
	onPublish  func()
	onBacklog  func(pending int)
}

// Config for Dispatcher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Notifier   Notifier
	Logger     *slog.Logger
	BatchSize  int               // Number of events to fetch per batch
	Interval   time.Duration     // Polling interval
	OnPublish  func()            // Called after each successful delivery
	OnBacklog  func(pending int) // Called after each poll with the undelivered count
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dispatcher{
		outboxRepo: cfg.OutboxRepo,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		onPublish:  cfg.OnPublish,
		onBacklog:  cfg.OnBacklog,
	}
}

// Start begins the dispatch loop. It runs until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("outbox dispatcher started",
		slog.Int("batch_size", d.batchSize),
		slog.Duration("interval", d.interval))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// Process immediately on start.
	if err := d.processBatch(ctx); err != nil {
		d.logger.Error("error dispatching events on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil {
				d.logger.Error("error dispatching events", slog.String("error", err.Error()))
			}
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	events, err := d.outboxRepo.GetUnpublished(ctx, d.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		d.reportBacklog(0)
		return nil
	}

	d.logger.Debug("dispatching events", slog.Int("count", len(events)))

	delivered := 0

	for _, event := range events {
		if err := d.notifier.Notify(ctx, event); err != nil {
			d.logger.Error("failed to deliver event",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.EventType),
				slog.String("error", err.Error()))
			// Leave the event unpublished; the next batch picks it up.
			continue
		}

		if err := d.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			d.logger.Error("failed to mark event as published",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
			continue
		}

		delivered++

		if d.onPublish != nil {
			d.onPublish()
		}
	}

	d.reportBacklog(len(events) - delivered)

	return nil
}

func (d *Dispatcher) reportBacklog(pending int) {
	if d.onBacklog != nil {
		d.onBacklog(pending)
	}
}

// LogNotifier delivers events to the log. It stands in for a real message
// broker in development deployments.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the event.
func (n *LogNotifier) Notify(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	n.logger.Info("notification delivered",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_type", event.AggregateType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("payload", string(payload)))

	return nil
}
