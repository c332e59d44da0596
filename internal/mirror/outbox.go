package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/store"
)

// Outbox stores events in the database for the Dispatcher.
type Outbox struct {
	DB *sql.DB
}

// Publish stores ev for delivery.
func (o *Outbox) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		metrics.MirrorEventsTotal.WithLabelValues("enqueue_failed").Inc()
		return fmt.Errorf("encoding %s event: %w", ev.Kind, err)
	}
	if err := store.EnqueueOutbox(ctx, o.DB, ev.ID, string(ev.Kind), payload); err != nil {
		metrics.MirrorEventsTotal.WithLabelValues("enqueue_failed").Inc()
		return err
	}
	metrics.MirrorEventsTotal.WithLabelValues("enqueued").Inc()
	return nil
}
