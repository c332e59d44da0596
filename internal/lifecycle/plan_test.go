package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

func foundation(id int64, start, end string) model.Foundation {
	return model.Foundation{
		ID:        id,
		Name:      "F",
		StartDate: model.MustParseDate(start),
		EndDate:   model.MustParseDate(end),
	}
}

func unclaimed(id int64, found string) model.Item {
	return model.Item{ID: id, Item: "thing", DateFound: model.MustParseDate(found), Status: model.ItemUnclaimed}
}

func ptr(v int64) *int64 { return &v }

func TestPlan(t *testing.T) {
	a := foundation(1, "2024-01-01", "2024-01-31")
	b := foundation(2, "2024-01-15", "2024-02-15")
	inverted := foundation(3, "2024-03-01", "2024-02-01")

	claimed := unclaimed(20, "2024-01-20")
	claimed.Status = model.ItemClaimed

	settled := unclaimed(21, "2024-01-20")
	settled.FoundationID = ptr(1)

	tests := []struct {
		name        string
		items       []model.Item
		foundations []model.Foundation
		want        []Update
		checked     int
		skipped     int
	}{
		{
			name:        "overlap picks first in order",
			items:       []model.Item{unclaimed(10, "2024-01-20")},
			foundations: []model.Foundation{a, b},
			want:        []Update{{ItemID: 10, FoundationID: 1, Status: model.ItemDonated}},
			checked:     1,
		},
		{
			name:        "overlap order reversed",
			items:       []model.Item{unclaimed(10, "2024-01-20")},
			foundations: []model.Foundation{b, a},
			want:        []Update{{ItemID: 10, FoundationID: 2, Status: model.ItemDonated}},
			checked:     1,
		},
		{
			name:        "no matching window",
			items:       []model.Item{unclaimed(10, "2023-12-31")},
			foundations: []model.Foundation{a, b},
			checked:     1,
		},
		{
			name:        "only invalid window",
			items:       []model.Item{unclaimed(10, "2024-02-15")},
			foundations: []model.Foundation{inverted},
			checked:     1,
			skipped:     1,
		},
		{
			name:        "non-unclaimed items ignored",
			items:       []model.Item{claimed},
			foundations: []model.Foundation{a},
		},
		{
			name:        "already pointing at match",
			items:       []model.Item{settled},
			foundations: []model.Foundation{a},
			checked:     1,
		},
		{
			name:        "unknown found date",
			items:       []model.Item{{ID: 11, Status: model.ItemUnclaimed}},
			foundations: []model.Foundation{a},
			checked:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.items, tt.foundations)
			assert.Equal(t, tt.want, got.Updates)
			assert.Equal(t, tt.checked, got.Checked)
			assert.Len(t, got.SkippedFoundations, tt.skipped)
		})
	}
}

func TestPlanIsIdempotentOnceApplied(t *testing.T) {
	foundations := []model.Foundation{
		foundation(1, "2024-01-01", "2024-01-31"),
		foundation(2, "2024-02-01", "2024-02-29"),
	}
	items := []model.Item{
		unclaimed(1, "2024-01-10"),
		unclaimed(2, "2024-02-10"),
		unclaimed(3, "2024-05-10"),
	}

	first := Plan(items, foundations)
	require.Len(t, first.Updates, 2)

	// Apply the plan to the snapshot.
	byID := map[int64]*model.Item{}
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, u := range first.Updates {
		byID[u.ItemID].Status = u.Status
		byID[u.ItemID].FoundationID = ptr(u.FoundationID)
	}

	second := Plan(items, foundations)
	assert.Empty(t, second.Updates)
	assert.Equal(t, 1, second.Checked)
}
