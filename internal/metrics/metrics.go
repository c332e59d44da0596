package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_reconcile_runs_total",
		Help: "Total number of reconciliation passes over unclaimed items.",
	})

	ItemsDonatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_items_donated_total",
		Help: "Total number of items assigned to a foundation by reconciliation.",
	})

	ReconcileItemErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_reconcile_item_errors_total",
		Help: "Total number of per-item write failures absorbed during reconciliation.",
	})

	InvalidFoundationWindows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lostfound_invalid_foundation_windows",
		Help: "Foundations skipped in the last reconciliation because start is after end.",
	})

	UnclaimedItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lostfound_unclaimed_items",
		Help: "Unclaimed items seen by the last reconciliation.",
	})

	MirrorEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_mirror_events_total",
		Help: "Mirror events by outcome (enqueued, delivered, failed, enqueue_failed).",
	},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_http_requests_total",
		Help: "HTTP requests by method and status code.",
	},
		[]string{"method", "code"},
	)
)
