// Package metrics provides the Prometheus and InfluxDB sinks behind the
// core metrics interfaces.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetcap/core/metrics"
)

// PromSink records planning and job events in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	actions  prometheus.Counter
	latency  prometheus.Histogram
	jobRuns  *prometheus.CounterVec
	jobTimes *prometheus.HistogramVec
}

// NewPromSink registers planning metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_runs_total",
		Help: "Total number of capacity planning runs",
	}, []string{"fallback"})
	actions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planning_actions_total",
		Help: "Total number of advised capacity actions",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planning_latency_seconds",
		Help:    "End to end latency of one planning run",
		Buckets: prometheus.DefBuckets,
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Total number of scheduled job iterations",
	}, []string{"job", "success"})
	jobTimes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of one scheduled job iteration",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(actions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			actions = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(jobRuns); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			jobRuns = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(jobTimes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			jobTimes = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, actions: actions, latency: latency, jobRuns: jobRuns, jobTimes: jobTimes}, nil
}

// RecordPlanningRun counts the run and observes its latency.
func (s *PromSink) RecordPlanningRun(run coremetrics.PlanningRun) error {
	s.runs.WithLabelValues(strconv.FormatBool(run.FallbackUsed)).Inc()
	s.actions.Add(float64(run.Actions))
	s.latency.Observe(run.Latency.Seconds())
	return nil
}

// RecordJobRun counts a scheduled job iteration.
func (s *PromSink) RecordJobRun(run coremetrics.JobRun) error {
	s.jobRuns.WithLabelValues(run.Job, strconv.FormatBool(run.Success)).Inc()
	s.jobTimes.WithLabelValues(run.Job).Observe(run.Duration.Seconds())
	return nil
}
