// Package matcher decides which foundation, if any, receives an unclaimed
// item based on the day it was found.
package matcher

import "github.com/erazemk/lostfound/internal/model"

// Match returns the ID of the first foundation, in the order given, whose
// valid window contains found. Foundations with an inverted window are
// skipped. There is no attempt to pick the narrowest or latest window.
func Match(found model.Date, foundations []model.Foundation) (int64, bool) {
	if found.IsZero() {
		return 0, false
	}
	for i := range foundations {
		if foundations[i].Accepts(found) {
			return foundations[i].ID, true
		}
	}
	return 0, false
}

// InvalidWindows returns the foundations Match will always skip.
func InvalidWindows(foundations []model.Foundation) []model.Foundation {
	var out []model.Foundation
	for _, f := range foundations {
		if !f.ValidWindow() {
			out = append(out, f)
		}
	}
	return out
}
