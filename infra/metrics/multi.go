package metrics

import coremetrics "github.com/kilianp07/fleetcap/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlanningRun forwards the run to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordPlanningRun(run coremetrics.PlanningRun) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlanningRun(run); err != nil {
			return err
		}
	}
	return nil
}

// RecordJobRun forwards job iterations to the sinks that support them.
func (m *MultiSink) RecordJobRun(run coremetrics.JobRun) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.JobRecorder); ok {
			if err := rec.RecordJobRun(run); err != nil {
				return err
			}
		}
	}
	return nil
}
