// Package rebalance pairs surplus stations with shortage stations per
// vehicle type. The matching is a deterministic greedy pass, not a globally
// cost-optimal assignment, so every proposal stays explainable.
package rebalance

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/fleetcap/core/model"
)

// Matcher turns per-pair capacity gaps into relocation and purchase
// proposals for a planning date.
type Matcher struct {
	// UnitCost prices one purchased vehicle. Relocations are costed at zero.
	UnitCost float64
}

// NewMatcher returns a Matcher with the given purchase unit cost.
func NewMatcher(unitCost float64) *Matcher {
	return &Matcher{UnitCost: unitCost}
}

type entry struct {
	stationID string
	gap       int
	priority  float64
	peak      float64
}

// Match builds the rebalancing plan for planDate out of the full gap set.
// Per vehicle type, shortages are served most-urgent-first from the largest
// surpluses; whatever surpluses cannot cover becomes a purchase. Ties keep
// the original ordering (stable sort).
func (m *Matcher) Match(planDate time.Time, recs []model.CapacityRecommendation) []model.RebalancingPlan {
	byType := make(map[string][]model.CapacityRecommendation)
	var types []string
	for _, r := range recs {
		if _, ok := byType[r.VehicleTypeID]; !ok {
			types = append(types, r.VehicleTypeID)
		}
		byType[r.VehicleTypeID] = append(byType[r.VehicleTypeID], r)
	}
	sort.Strings(types)

	var plans []model.RebalancingPlan
	for _, vt := range types {
		plans = append(plans, m.matchType(planDate, vt, byType[vt])...)
	}
	return plans
}

func (m *Matcher) matchType(planDate time.Time, vehicleTypeID string, recs []model.CapacityRecommendation) []model.RebalancingPlan {
	var shortages, surpluses []entry
	for _, r := range recs {
		e := entry{stationID: r.StationID, gap: r.Gap, priority: r.Priority, peak: r.PeakP90Demand}
		switch {
		case r.Gap > 0:
			shortages = append(shortages, e)
		case r.Gap < 0:
			surpluses = append(surpluses, e)
		}
	}
	sort.SliceStable(shortages, func(i, j int) bool { return shortages[i].gap > shortages[j].gap })
	sort.SliceStable(surpluses, func(i, j int) bool { return surpluses[i].gap < surpluses[j].gap })

	var plans []model.RebalancingPlan
	for _, short := range shortages {
		need := short.gap
		for i := range surpluses {
			if need == 0 {
				break
			}
			avail := -surpluses[i].gap
			if avail <= 0 {
				continue
			}
			qty := need
			if avail < qty {
				qty = avail
			}
			plans = append(plans, model.RebalancingPlan{
				PlanDate:      planDate,
				FromDepotID:   surpluses[i].stationID,
				ToDepotID:     short.stationID,
				VehicleTypeID: vehicleTypeID,
				Quantity:      qty,
				ActionType:    model.PlanRelocate,
				Priority:      short.priority,
				EstimatedCost: 0,
				Status:        model.PlanProposed,
				Reason: fmt.Sprintf("move %d surplus unit(s) from %s to cover shortage of %d at %s",
					qty, surpluses[i].stationID, short.gap, short.stationID),
			})
			surpluses[i].gap += qty
			need -= qty
		}
		if need > 0 {
			plans = append(plans, model.RebalancingPlan{
				PlanDate:      planDate,
				ToDepotID:     short.stationID,
				VehicleTypeID: vehicleTypeID,
				Quantity:      need,
				ActionType:    model.PlanPurchase,
				Priority:      short.priority,
				EstimatedCost: float64(need) * m.UnitCost,
				Status:        model.PlanProposed,
				Reason: fmt.Sprintf("no surplus left for %s, purchase %d unit(s) (peak demand %.1f)",
					short.stationID, need, short.peak),
			})
		}
	}
	return plans
}
