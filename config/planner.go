package config

import (
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/planner"
)

// PlannerConfig parameterizes the planning core and the scheduled plan
// job.
type PlannerConfig struct {
	// UnitCost prices one purchased vehicle in the rebalancing matcher.
	UnitCost float64 `json:"unit_cost"`
	// Constraints are the defaults used by the scheduled plan job. API
	// callers supply their own per request.
	Constraints model.PlanningConstraints `json:"constraints"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.UnitCost <= 0 {
		c.UnitCost = 25000
	}
	if c.Constraints.AvgTripHours <= 0 {
		c.Constraints.AvgTripHours = 2
	}
	if c.Constraints.TurnaroundHours <= 0 {
		c.Constraints.TurnaroundHours = 0.5
	}
}

// Validate rejects unusable planning defaults.
func (c PlannerConfig) Validate() error {
	constraints := c.Constraints
	return planner.ValidateConstraints(&constraints)
}
