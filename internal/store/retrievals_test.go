package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestCreateRetrievalRequestForcesPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Laptop", "2024-04-04"))
	r, err := CreateRetrievalRequest(ctx, database, &model.RetrievalRequest{
		ClaimerName: "Leo",
		ItemID:      item.ID,
		Status:      model.RequestApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, r.Status)
}

func TestCreateRetrievalRequestUnknownItem(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateRetrievalRequest(context.Background(), database, &model.RetrievalRequest{
		ClaimerName: "Leo",
		ItemID:      404,
	})
	assert.Error(t, err, "foreign key should reject a missing item")
}

func TestUpdateRetrievalRequestFieldsPartial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Watch", "2024-04-04"))
	r, _ := CreateRetrievalRequest(ctx, database, &model.RetrievalRequest{
		ClaimerName: "Leo",
		ItemID:      item.ID,
		Description: "old",
		TimeLost:    "10:00",
	})

	desc := "silver watch, cracked strap"
	require.NoError(t, UpdateRetrievalRequestFields(ctx, database, r.ID, model.RequestFields{Description: &desc}))

	got, err := GetRetrievalRequest(ctx, database, r.ID)
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, "10:00", got.TimeLost)
	assert.Equal(t, "Leo", got.ClaimerName)
	assert.Equal(t, model.RequestPending, got.Status)
}

func TestListRetrievalRequestsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, &model.User{Email: "leo@example.com"}, "hash", model.RoleStudent)
	item, _ := CreateItem(ctx, database, newItem("Bag", "2024-04-04"))
	r1, _ := CreateRetrievalRequest(ctx, database, &model.RetrievalRequest{ClaimerName: "Leo", ItemID: item.ID, UserID: &u.ID})
	CreateRetrievalRequest(ctx, database, &model.RetrievalRequest{ClaimerName: "Other", ItemID: item.ID})
	require.NoError(t, SetRetrievalRequestStatus(ctx, database, r1.ID, model.RequestRejected))

	rejected, err := ListRetrievalRequests(ctx, database, model.RequestRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)

	mine, err := ListRetrievalRequestsByUser(ctx, database, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, r1.ID, mine[0].ID)

	assert.ErrorIs(t, SetRetrievalRequestStatus(ctx, database, 999, model.RequestApproved), model.ErrNotFound)
}
