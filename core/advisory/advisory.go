// Package advisory defines the capacity advisory contract: an external
// structured-output model refines the deterministic baseline, and a local
// fallback produces the same class of advice whenever the external call
// fails in any way.
package advisory

import (
	"context"

	"github.com/kilianp07/fleetcap/core/model"
)

// Request carries everything the advisory endpoint needs for one run.
type Request struct {
	Constraints model.PlanningConstraints      `json:"constraints"`
	Baseline    []model.CapacityRecommendation `json:"baseline"`
}

// Client produces capacity advice for a baseline. Implementations may fail;
// use Resilient to guarantee an answer.
type Client interface {
	GetAdvice(ctx context.Context, req Request) (*model.CapacityAdviceResponse, error)
}
