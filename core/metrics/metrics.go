// Package metrics defines the observability events of the planning engine
// and the sink interfaces that record them.
package metrics

import "time"

// PlanningRun describes one completed capacity planning request.
type PlanningRun struct {
	RunID        string
	TargetDate   time.Time
	Pairs        int
	Actions      int
	FallbackUsed bool
	Latency      time.Duration
	Time         time.Time
}

// JobRun describes one iteration of a scheduled job.
type JobRun struct {
	Job      string
	Success  bool
	Items    int
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records planning runs for observability purposes.
type MetricsSink interface {
	RecordPlanningRun(run PlanningRun) error
}

// JobRecorder records scheduled job iterations. Sinks implement it
// optionally.
type JobRecorder interface {
	RecordJobRun(run JobRun) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordPlanningRun(PlanningRun) error { return nil }
func (NopSink) RecordJobRun(JobRun) error           { return nil }
