package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/metrics"
)

type recordingSink struct {
	mu   sync.Mutex
	runs []metrics.JobRun
}

func (s *recordingSink) RecordJobRun(run metrics.JobRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *recordingSink) snapshot() []metrics.JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]metrics.JobRun(nil), s.runs...)
}

type countingJob struct {
	name string
	mu   sync.Mutex
	runs int
	fn   func(run int) (int, error)
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) (int, error) {
	j.mu.Lock()
	j.runs++
	run := j.runs
	j.mu.Unlock()
	if j.fn != nil {
		return j.fn(run)
	}
	return 1, nil
}

func (j *countingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestRunner_TicksUntilCancelled(t *testing.T) {
	sink := &recordingSink{}
	job := &countingJob{name: "tick"}
	r := NewRunner(0, sink, logger.NopLogger{})
	r.Add(job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return job.count() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	runs := sink.snapshot()
	require.NotEmpty(t, runs)
	assert.Equal(t, "tick", runs[0].Job)
	assert.True(t, runs[0].Success)
	assert.Equal(t, 1, runs[0].Items)
}

func TestRunner_SurvivesPanicAndError(t *testing.T) {
	sink := &recordingSink{}
	job := &countingJob{name: "flaky", fn: func(run int) (int, error) {
		switch run {
		case 1:
			panic("boom")
		case 2:
			return 0, errors.New("transient")
		}
		return 5, nil
	}}
	r := NewRunner(0, sink, logger.NopLogger{})
	r.Add(job, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Start(ctx)
	require.Eventually(t, func() bool { return job.count() >= 3 }, time.Second, time.Millisecond)
	cancel()

	require.Eventually(t, func() bool { return len(sink.snapshot()) >= 3 }, time.Second, time.Millisecond)
	runs := sink.snapshot()
	assert.False(t, runs[0].Success) // panic
	assert.False(t, runs[1].Success) // error
	assert.True(t, runs[2].Success)
	assert.Equal(t, 5, runs[2].Items)
}

func TestRunner_WarmupDelaysFirstRun(t *testing.T) {
	job := &countingJob{name: "slow-start"}
	r := NewRunner(50*time.Millisecond, nil, logger.NopLogger{})
	r.Add(job, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, job.count())
	require.Eventually(t, func() bool { return job.count() == 1 }, time.Second, time.Millisecond)
}

func TestRunner_CancelDuringWarmupNeverRuns(t *testing.T) {
	job := &countingJob{name: "never"}
	r := NewRunner(time.Hour, nil, logger.NopLogger{})
	r.Add(job, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, 0, job.count())
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, 30*60, c.SnapshotIntervalSeconds)
	assert.Equal(t, 60*60, c.AggregateIntervalSeconds)
	assert.Equal(t, 6*60*60, c.ForecastIntervalSeconds)
	assert.Equal(t, 12*60*60, c.PlanIntervalSeconds)
	assert.Equal(t, 56, c.HistoryWindowDays)
	assert.NoError(t, c.Validate())

	c.HistoryWindowDays = 90
	assert.Error(t, c.Validate())
}
