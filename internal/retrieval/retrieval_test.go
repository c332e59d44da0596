package retrieval

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

func newService(t *testing.T) (*Service, *model.Item) {
	t.Helper()
	database := db.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	item, err := store.CreateItem(context.Background(), database, &model.Item{
		Item:      "Wallet",
		DateFound: model.MustParseDate("2024-01-10"),
	})
	require.NoError(t, err)

	return New(database, lifecycle.New(database, nil, logger), logger), item
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.RequestStatus
		want     bool
	}{
		{model.RequestPending, model.RequestApproved, true},
		{model.RequestPending, model.RequestRejected, true},
		{model.RequestPending, model.RequestPending, true},
		{model.RequestApproved, model.RequestApproved, true},
		{model.RequestApproved, model.RequestRejected, false},
		{model.RequestApproved, model.RequestPending, false},
		{model.RequestRejected, model.RequestApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCreateForcesPending(t *testing.T) {
	s, item := newService(t)

	req, err := s.Create(context.Background(), &model.RetrievalRequest{
		ClaimerName: "Ben",
		ItemID:      item.ID,
		Status:      model.RequestApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
}

func TestCreateRequiresItem(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &model.RetrievalRequest{ClaimerName: "Ben", ItemID: 999})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.Create(ctx, &model.RetrievalRequest{ItemID: 1})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAdvance(t *testing.T) {
	s, item := newService(t)
	ctx := context.Background()

	req, err := s.Create(ctx, &model.RetrievalRequest{ClaimerName: "Ben", ItemID: item.ID})
	require.NoError(t, err)

	_, err = s.Advance(ctx, req.ID, "maybe")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = s.Advance(ctx, 999, "approved")
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.Advance(ctx, req.ID, "resolved")
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)

	// Repeating the decision is a no-op.
	got, err = s.Advance(ctx, req.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)

	_, err = s.Advance(ctx, req.ID, "rejected")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestApprovalDoesNotTouchItem(t *testing.T) {
	s, item := newService(t)
	ctx := context.Background()

	req, err := s.Create(ctx, &model.RetrievalRequest{ClaimerName: "Ben", ItemID: item.ID})
	require.NoError(t, err)
	_, err = s.Advance(ctx, req.ID, "approved")
	require.NoError(t, err)

	got, err := s.Items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemUnclaimed, got.Status)

	got, err = s.SetFoundItemStatus(ctx, item.ID, "claimed")
	require.NoError(t, err)
	assert.Equal(t, model.ItemClaimed, got.Status)

	_, err = s.SetFoundItemStatus(ctx, item.ID, "donated")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUpdateFields(t *testing.T) {
	s, item := newService(t)
	ctx := context.Background()

	req, err := s.Create(ctx, &model.RetrievalRequest{
		ClaimerName: "Ben",
		ItemID:      item.ID,
		Description: "brown leather",
	})
	require.NoError(t, err)

	where := "Library"
	got, err := s.UpdateFields(ctx, req.ID, model.RequestFields{GeneralLocation: &where})
	require.NoError(t, err)
	assert.Equal(t, "Library", got.GeneralLocation)
	assert.Equal(t, "brown leather", got.Description)
	assert.Equal(t, "Ben", got.ClaimerName)
	assert.Equal(t, model.RequestPending, got.Status)

	_, err = s.UpdateFields(ctx, 999, model.RequestFields{GeneralLocation: &where})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
