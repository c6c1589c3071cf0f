package eventbus

import (
	"testing"

	"github.com/kilianp07/fleetcap/core/metrics"
)

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[string]()
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestTypedBusNonBlockingPublish(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	// fill the subscriber buffer and keep publishing
	for i := 0; i < 20; i++ {
		bus.Publish(i)
	}
	if v := <-ch; v != 0 {
		t.Fatalf("expected first event, got %v", v)
	}
}

func TestSinkPublishesRuns(t *testing.T) {
	planning := NewTyped[metrics.PlanningRun]()
	jobs := NewTyped[metrics.JobRun]()
	sink := NewSink(planning, jobs)

	pch := planning.Subscribe()
	jch := jobs.Subscribe()

	if err := sink.RecordPlanningRun(metrics.PlanningRun{RunID: "run-1"}); err != nil {
		t.Fatalf("record planning: %v", err)
	}
	if err := sink.RecordJobRun(metrics.JobRun{Job: "snapshot_capture"}); err != nil {
		t.Fatalf("record job: %v", err)
	}

	if run := <-pch; run.RunID != "run-1" {
		t.Fatalf("unexpected planning run %+v", run)
	}
	if run := <-jch; run.Job != "snapshot_capture" {
		t.Fatalf("unexpected job run %+v", run)
	}
}

func TestSinkNilBuses(t *testing.T) {
	sink := NewSink(nil, nil)
	if err := sink.RecordPlanningRun(metrics.PlanningRun{}); err != nil {
		t.Fatalf("nil planning bus: %v", err)
	}
	if err := sink.RecordJobRun(metrics.JobRun{}); err != nil {
		t.Fatalf("nil job bus: %v", err)
	}
}
