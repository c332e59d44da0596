// Package lifecycle moves found items between unclaimed, claimed and donated.
//
// Reconciliation is split in two: Plan is a pure function over snapshots of
// items and foundations, and Engine applies the resulting updates one item at
// a time so a single failed write never stops the rest of the batch.
package lifecycle

import (
	"github.com/erazemk/lostfound/internal/matcher"
	"github.com/erazemk/lostfound/internal/model"
)

// Update is a single planned reassignment.
type Update struct {
	ItemID       int64
	FoundationID int64
	Status       model.ItemStatus
}

// PlanResult is the outcome of planning one reconciliation pass.
type PlanResult struct {
	Updates []Update
	// SkippedFoundations have an inverted window and were never considered.
	SkippedFoundations []model.Foundation
	// Checked is the number of unclaimed items examined.
	Checked int
}

// Plan decides which unclaimed items should be donated. Items already pointing
// at their matching foundation produce no update, so planning the same
// snapshot twice after applying it yields nothing.
func Plan(items []model.Item, foundations []model.Foundation) PlanResult {
	res := PlanResult{SkippedFoundations: matcher.InvalidWindows(foundations)}

	for _, item := range items {
		if item.Status != model.ItemUnclaimed {
			continue
		}
		res.Checked++

		fid, ok := matcher.Match(item.DateFound, foundations)
		if !ok {
			continue
		}
		if item.FoundationID != nil && *item.FoundationID == fid {
			continue
		}
		res.Updates = append(res.Updates, Update{
			ItemID:       item.ID,
			FoundationID: fid,
			Status:       model.ItemDonated,
		})
	}

	return res
}
