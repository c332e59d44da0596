// Package retrieval handles formal claims against found items.
//
// A request's review status and the referenced item's status are separate
// state machines. Approving a request does not mark the item claimed; the
// caller does that with SetFoundItemStatus.
package retrieval

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// CanTransition reports whether a request may move from one status to
// another. Reviews are final; repeating the current status is allowed.
func CanTransition(from, to model.RequestStatus) bool {
	if from == to {
		return true
	}
	return from == model.RequestPending && (to == model.RequestApproved || to == model.RequestRejected)
}

// Service runs the retrieval workflow.
type Service struct {
	DB     *sql.DB
	Items  *lifecycle.Engine
	Logger *slog.Logger
}

// New returns a Service.
func New(db *sql.DB, items *lifecycle.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{DB: db, Items: items, Logger: logger}
}

// Create files a request. The status is always pending whatever the caller
// sent, and the item must exist.
func (s *Service) Create(ctx context.Context, in *model.RetrievalRequest) (*model.RetrievalRequest, error) {
	if strings.TrimSpace(in.ClaimerName) == "" {
		return nil, model.Invalidf("claimer_name is required")
	}
	item, err := store.GetItem(ctx, s.DB, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NotFoundf("item %d", in.ItemID)
	}

	in.Status = model.RequestPending
	req, err := store.CreateRetrievalRequest(ctx, s.DB, in)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("retrieval request filed", "request", req.ID, "item", req.ItemID)
	return req, nil
}

// Get returns a request by ID.
func (s *Service) Get(ctx context.Context, id int64) (*model.RetrievalRequest, error) {
	req, err := store.GetRetrievalRequest(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, model.NotFoundf("retrieval request %d", id)
	}
	return req, nil
}

// Advance records a review decision.
func (s *Service) Advance(ctx context.Context, id int64, status string) (*model.RetrievalRequest, error) {
	to, err := model.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, to) {
		return nil, model.Invalidf("cannot move request from %s to %s", req.Status, to)
	}
	if req.Status == to {
		return req, nil
	}

	if err := store.SetRetrievalRequestStatus(ctx, s.DB, id, to); err != nil {
		return nil, err
	}
	s.Logger.Info("retrieval request reviewed", "request", id, "status", to)
	return s.Get(ctx, id)
}

// UpdateFields applies an owner edit. Identity, item and status are not
// reachable through this path.
func (s *Service) UpdateFields(ctx context.Context, id int64, fields model.RequestFields) (*model.RetrievalRequest, error) {
	if err := store.UpdateRetrievalRequestFields(ctx, s.DB, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetFoundItemStatus marks the item behind a claim claimed or unclaimed.
// It is independent of any request's status.
func (s *Service) SetFoundItemStatus(ctx context.Context, itemID int64, status string) (*model.Item, error) {
	return s.Items.SetItemStatus(ctx, itemID, status)
}
