package eventbus

import "github.com/kilianp07/fleetcap/core/metrics"

// Sink adapts a planning run bus to the metrics sink interfaces so the
// planner publishes events without knowing about the bus.
type Sink struct {
	planning *TypedBus[metrics.PlanningRun]
	jobs     *TypedBus[metrics.JobRun]
}

// NewSink returns a Sink publishing onto the given buses. Either bus may
// be nil.
func NewSink(planning *TypedBus[metrics.PlanningRun], jobs *TypedBus[metrics.JobRun]) *Sink {
	return &Sink{planning: planning, jobs: jobs}
}

// RecordPlanningRun publishes the run onto the planning bus.
func (s *Sink) RecordPlanningRun(run metrics.PlanningRun) error {
	if s.planning != nil {
		s.planning.Publish(run)
	}
	return nil
}

// RecordJobRun publishes the iteration onto the job bus.
func (s *Sink) RecordJobRun(run metrics.JobRun) error {
	if s.jobs != nil {
		s.jobs.Publish(run)
	}
	return nil
}
