package jobs

import (
	"context"
	"time"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/planner"
	"github.com/kilianp07/fleetcap/core/rebalance"
)

// PlanStore is the slice of the store the plan job writes through.
type PlanStore interface {
	ReplaceProposedPlans(ctx context.Context, planDate time.Time, plans []model.RebalancingPlan) error
	PrunePlans(ctx context.Context, now time.Time) (int64, error)
	PruneAdviceRuns(ctx context.Context, now time.Time) (int64, error)
}

// PlanPublisher pushes a generated plan batch to downstream consumers.
type PlanPublisher interface {
	PublishPlans(planDate time.Time, plans []model.RebalancingPlan) error
}

// PlanJob regenerates the next-day rebalancing plan from the deterministic
// baseline. Each run supersedes the still-PROPOSED rows for that date.
type PlanJob struct {
	orch        *planner.Orchestrator
	matcher     *rebalance.Matcher
	store       PlanStore
	constraints model.PlanningConstraints
	notifier    PlanPublisher
	log         logger.Logger
	now         func() time.Time
}

// NewPlanJob returns a rebalancing plan job planning with the given
// constraints.
func NewPlanJob(orch *planner.Orchestrator, matcher *rebalance.Matcher, store PlanStore,
	constraints model.PlanningConstraints, log logger.Logger) *PlanJob {
	return &PlanJob{
		orch:        orch,
		matcher:     matcher,
		store:       store,
		constraints: constraints,
		log:         log,
		now:         time.Now,
	}
}

// SetNotifier attaches an optional plan publisher. Publish failures are
// logged, the stored plan is already committed at that point.
func (j *PlanJob) SetNotifier(n PlanPublisher) { j.notifier = n }

func (j *PlanJob) Name() string { return "plan_generation" }

// Run plans the next day and replaces its proposed rows in one transaction.
func (j *PlanJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	planDate := now.Truncate(24 * time.Hour).AddDate(0, 0, 1)

	c := j.constraints
	if err := planner.ValidateConstraints(&c); err != nil {
		return 0, err
	}
	baseline, err := j.orch.Baseline(ctx, planDate, c)
	if err != nil {
		return 0, err
	}
	plans := j.matcher.Match(planDate, baseline)
	if err := j.store.ReplaceProposedPlans(ctx, planDate, plans); err != nil {
		return 0, err
	}
	if j.notifier != nil {
		if err := j.notifier.PublishPlans(planDate, plans); err != nil {
			j.log.Warnf("publish plans: %v", err)
		}
	}
	if pruned, err := j.store.PrunePlans(ctx, now); err != nil {
		j.log.Warnf("prune plans: %v", err)
	} else if pruned > 0 {
		j.log.Debugf("pruned %d plan row(s)", pruned)
	}
	if pruned, err := j.store.PruneAdviceRuns(ctx, now); err != nil {
		j.log.Warnf("prune advice runs: %v", err)
	} else if pruned > 0 {
		j.log.Debugf("pruned %d advice run(s)", pruned)
	}
	return len(plans), nil
}
