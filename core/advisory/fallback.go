package advisory

import (
	"fmt"
	"sort"

	"github.com/kilianp07/fleetcap/core/model"
)

// FallbackNote marks advice that was derived locally instead of by the
// external endpoint.
const FallbackNote = "fallback advice computed locally; advisory endpoint unavailable or returned an invalid response"

// Fallback derives advice from the baseline alone. Every shortage maps 1:1
// to a BUY action; surpluses and balanced pairs are omitted. Actions are
// ordered by priority descending with the input order breaking ties.
func Fallback(baseline []model.CapacityRecommendation) *model.CapacityAdviceResponse {
	var actions []model.CapacityAction
	stations := make(map[string]struct{})
	unitsAdded := 0
	for _, rec := range baseline {
		if rec.Gap <= 0 {
			continue
		}
		actions = append(actions, model.CapacityAction{
			StationID:     rec.StationID,
			VehicleTypeID: rec.VehicleTypeID,
			ActionType:    model.AdviceBuy,
			Units:         rec.Gap,
			Priority:      rec.Priority,
			Rationale: fmt.Sprintf("peak P90 demand %.1f exceeds current availability %d by %d unit(s)",
				rec.PeakP90Demand, rec.CurrentAvailablePeak, rec.Gap),
		})
		stations[rec.StationID] = struct{}{}
		unitsAdded += rec.Gap
	}
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Priority > actions[j].Priority })

	return &model.CapacityAdviceResponse{
		Actions: actions,
		Summary: model.AdviceSummary{
			TotalCost:        0,
			StationsAffected: len(stations),
			UnitsAdded:       unitsAdded,
			UnitsReallocated: 0,
			Notes:            FallbackNote,
		},
	}
}
