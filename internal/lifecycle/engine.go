package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/mirror"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// Publisher accepts mirror events after the primary write has happened.
type Publisher interface {
	Publish(ctx context.Context, ev mirror.Event) error
}

// Engine runs item writes and reconciliation against the store.
type Engine struct {
	DB     *sql.DB
	Mirror Publisher
	Logger *slog.Logger
}

// New returns an Engine. A nil mirror disables mirroring.
func New(db *sql.DB, pub Publisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{DB: db, Mirror: pub, Logger: logger}
}

// Result summarises one reconciliation pass.
type Result struct {
	Checked            int `json:"checked"`
	Donated            int `json:"donated"`
	Failed             int `json:"failed"`
	SkippedFoundations int `json:"skipped_foundations"`
}

// Reconcile assigns every unclaimed item whose found date falls in a
// foundation's window to that foundation. Only a failure to load the
// snapshots is returned; per-item write failures are logged and counted.
func (e *Engine) Reconcile(ctx context.Context) (Result, error) {
	items, err := store.ListUnclaimedItems(ctx, e.DB)
	if err != nil {
		return Result{}, fmt.Errorf("loading unclaimed items: %w", err)
	}
	foundations, err := store.ListFoundations(ctx, e.DB)
	if err != nil {
		return Result{}, fmt.Errorf("loading foundations: %w", err)
	}

	plan := Plan(items, foundations)
	res := Result{Checked: plan.Checked, SkippedFoundations: len(plan.SkippedFoundations)}

	metrics.ReconcileRunsTotal.Inc()
	metrics.UnclaimedItems.Set(float64(plan.Checked))
	metrics.InvalidFoundationWindows.Set(float64(len(plan.SkippedFoundations)))

	for _, f := range plan.SkippedFoundations {
		e.Logger.Warn("skipping foundation with invalid window",
			"foundation", f.ID, "start", f.StartDate.String(), "end", f.EndDate.String())
	}

	for _, u := range plan.Updates {
		assigned, err := store.AssignFoundation(ctx, e.DB, u.ItemID, u.FoundationID)
		if err != nil {
			res.Failed++
			metrics.ReconcileItemErrorsTotal.Inc()
			e.Logger.Error("assigning foundation failed",
				"item", u.ItemID, "foundation", u.FoundationID, "error", err)
			continue
		}
		if !assigned {
			// Claimed or donated by someone else since the snapshot.
			continue
		}
		res.Donated++
		metrics.ItemsDonatedTotal.Inc()
		e.Logger.Info("item donated", "item", u.ItemID, "foundation", u.FoundationID)
		e.mirrorItem(ctx, mirror.ItemUpdated, u.ItemID)
	}

	return res, nil
}

// reconcileQuietly runs Reconcile for callers that must not fail because of it.
func (e *Engine) reconcileQuietly(ctx context.Context) {
	if _, err := e.Reconcile(ctx); err != nil {
		e.Logger.Error("reconciliation failed", "error", err)
	}
}

// CreateItem stores a found item and immediately reconciles, so an item found
// inside an open donation window comes back already donated. Only unclaimed
// and claimed are accepted and any foundation in the input is ignored.
func (e *Engine) CreateItem(ctx context.Context, in *model.Item) (*model.Item, error) {
	if in.Status == "" {
		in.Status = model.ItemUnclaimed
	} else {
		st, err := model.ParseManualItemStatus(string(in.Status))
		if err != nil {
			return nil, err
		}
		in.Status = st
	}
	in.FoundationID = nil

	item, err := store.CreateItem(ctx, e.DB, in)
	if err != nil {
		return nil, err
	}
	e.Logger.Info("item created", "item", item.ID, "status", item.Status)
	// Published before reconciling so a resulting donation follows the
	// creation in the outbox.
	e.publish(ctx, mirror.NewItemEvent(mirror.ItemCreated, item))

	e.reconcileQuietly(ctx)

	return e.GetItem(ctx, item.ID)
}

// ListItems reconciles and then returns items, optionally filtered by status.
// A failed reconciliation is logged and the listing is still served.
func (e *Engine) ListItems(ctx context.Context, status model.ItemStatus) ([]model.Item, error) {
	e.reconcileQuietly(ctx)
	return store.ListItems(ctx, e.DB, status)
}

// ListFoundationItems reconciles and returns the items donated to a foundation.
func (e *Engine) ListFoundationItems(ctx context.Context, foundationID int64) ([]model.Item, error) {
	f, err := store.GetFoundation(ctx, e.DB, foundationID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, model.NotFoundf("foundation %d", foundationID)
	}
	e.reconcileQuietly(ctx)
	return store.ListItemsByFoundation(ctx, e.DB, foundationID)
}

// GetItem returns a single item.
func (e *Engine) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NotFoundf("item %d", id)
	}
	return item, nil
}

// History returns the recorded status changes of an item, oldest first.
func (e *Engine) History(ctx context.Context, id int64) ([]model.ItemTransition, error) {
	if _, err := e.GetItem(ctx, id); err != nil {
		return nil, err
	}
	return store.ListItemHistory(ctx, e.DB, id)
}

// SetItemStatus is the manual transition between claimed and unclaimed.
// Donated cannot be set here. The foundation assignment is left as is.
func (e *Engine) SetItemStatus(ctx context.Context, id int64, status string) (*model.Item, error) {
	st, err := model.ParseManualItemStatus(status)
	if err != nil {
		return nil, err
	}
	if err := store.SetItemStatus(ctx, e.DB, id, st); err != nil {
		return nil, err
	}
	e.Logger.Info("item status changed", "item", id, "status", st)

	item, err := e.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, mirror.NewItemEvent(mirror.ItemUpdated, item))
	return item, nil
}

// UpdateItem overwrites an item's fields. This is the administrative path and
// may set any known status, but donated needs an existing foundation and a
// foundation is only kept on donated items.
func (e *Engine) UpdateItem(ctx context.Context, in *model.Item) (*model.Item, error) {
	st, err := model.ParseItemStatus(string(in.Status))
	if err != nil {
		return nil, err
	}
	in.Status = st
	if in.Status != model.ItemDonated {
		in.FoundationID = nil
	} else if in.FoundationID == nil {
		return nil, model.Invalidf("status %q requires a foundation", st)
	}
	if in.FoundationID != nil {
		f, err := store.GetFoundation(ctx, e.DB, *in.FoundationID)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, model.NotFoundf("foundation %d", *in.FoundationID)
		}
	}

	if err := store.UpdateItem(ctx, e.DB, in); err != nil {
		return nil, err
	}

	item, err := e.GetItem(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, mirror.NewItemEvent(mirror.ItemUpdated, item))
	return item, nil
}

// DeleteItem removes an item along with its retrieval requests.
func (e *Engine) DeleteItem(ctx context.Context, id int64) error {
	item, err := e.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteItem(ctx, e.DB, id); err != nil {
		return err
	}
	e.Logger.Info("item deleted", "item", id)
	e.publish(ctx, mirror.NewItemEvent(mirror.ItemDeleted, item))
	return nil
}

func (e *Engine) mirrorItem(ctx context.Context, kind mirror.Kind, id int64) {
	if e.Mirror == nil {
		return
	}
	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil || item == nil {
		e.Logger.Warn("mirror: reloading item failed", "item", id, "error", err)
		return
	}
	e.publish(ctx, mirror.NewItemEvent(kind, item))
}

func (e *Engine) publish(ctx context.Context, ev mirror.Event) {
	if e.Mirror == nil {
		return
	}
	if err := e.Mirror.Publish(ctx, ev); err != nil {
		e.Logger.Error("mirror publish failed", "item", ev.ItemID, "kind", ev.Kind, "error", err)
	}
}
