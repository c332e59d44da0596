package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/store"
)

// Config controls outbox delivery.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// DefaultConfig returns the delivery settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}
}

// Dispatcher drains the outbox into a Sink.
type Dispatcher struct {
	DB     *sql.DB
	Sink   Sink
	Config Config
	Logger *slog.Logger
}

// NewDispatcher returns a dispatcher, filling zero config values with defaults.
func NewDispatcher(db *sql.DB, sink Sink, cfg Config, logger *slog.Logger) *Dispatcher {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{DB: db, Sink: sink, Config: cfg, Logger: logger}
}

// Run delivers pending events every poll interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.Config.PollInterval)
	defer ticker.Stop()

	for {
		if _, _, err := d.DispatchOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.Logger.Error("mirror dispatch failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// DispatchOnce delivers one batch of pending events. A delivery failure is
// recorded on the entry and does not stop the batch, but later events for the
// same item are held back until the failed one is delivered or abandoned, so
// each item's events reach the sink in the order they were published.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (delivered, failed int, err error) {
	entries, err := store.ListDeliverableOutbox(ctx, d.DB, d.Config.MaxAttempts, d.Config.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	blocked := make(map[int64]bool)
	held := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return delivered, failed, ctx.Err()
		}

		var ev Event
		deliverErr := json.Unmarshal(entry.Payload, &ev)
		if deliverErr != nil {
			deliverErr = fmt.Errorf("decoding payload: %w", deliverErr)
		} else if blocked[ev.ItemID] {
			held++
			continue
		} else {
			deliverErr = d.Sink.Deliver(ctx, ev)
		}

		if deliverErr != nil {
			failed++
			if ev.ItemID != 0 {
				blocked[ev.ItemID] = true
			}
			metrics.MirrorEventsTotal.WithLabelValues("failed").Inc()
			d.Logger.Warn("mirror delivery failed",
				"event", entry.EventID, "kind", entry.Kind,
				"attempt", entry.Attempts+1, "error", deliverErr)
			if err := store.MarkOutboxFailed(ctx, d.DB, entry.ID, deliverErr.Error()); err != nil {
				return delivered, failed, err
			}
			continue
		}

		delivered++
		metrics.MirrorEventsTotal.WithLabelValues("delivered").Inc()
		if err := store.MarkOutboxDone(ctx, d.DB, entry.ID); err != nil {
			return delivered, failed, err
		}
	}

	if delivered+failed+held > 0 {
		d.Logger.Info("mirror batch dispatched", "delivered", delivered, "failed", failed, "held", held)
	}
	return delivered, failed, nil
}
