package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetcap/core/advisory"
	"github.com/kilianp07/fleetcap/core/availability"
	"github.com/kilianp07/fleetcap/core/logger"
	coremetrics "github.com/kilianp07/fleetcap/core/metrics"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/stats"
)

// Audit output larger than this is truncated before persisting.
const maxAuditOutputBytes = 16 << 10

// PairLister enumerates the station/vehicle-type combinations that have
// historical demand in a window.
type PairLister interface {
	ActivePairs(ctx context.Context, from, to time.Time) ([]availability.PairKey, error)
}

// AuditWriter persists advice run records.
type AuditWriter interface {
	SaveAdviceRun(ctx context.Context, run model.AdviceRun) error
}

// Orchestrator is the top-level capacity planning use case. It builds the
// deterministic baseline, consults the advisory client and records an audit
// trail of the run.
type Orchestrator struct {
	engine  *stats.Engine
	loader  *availability.Loader
	advisor *advisory.Resilient
	pairs   PairLister
	audit   AuditWriter
	sink    coremetrics.MetricsSink
	log     logger.Logger
	now     func() time.Time
}

// NewOrchestrator wires the planning use case. audit and sink may be nil.
func NewOrchestrator(engine *stats.Engine, loader *availability.Loader, advisor *advisory.Resilient,
	pairs PairLister, audit AuditWriter, sink coremetrics.MetricsSink, log logger.Logger) *Orchestrator {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Orchestrator{
		engine:  engine,
		loader:  loader,
		advisor: advisor,
		pairs:   pairs,
		audit:   audit,
		sink:    sink,
		log:     log,
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (o *Orchestrator) SetClock(now func() time.Time) { o.now = now }

// Baseline computes the deterministic per-pair recommendations for
// targetDate, sorted by priority descending.
func (o *Orchestrator) Baseline(ctx context.Context, targetDate time.Time, c model.PlanningConstraints) ([]model.CapacityRecommendation, error) {
	from := targetDate.AddDate(0, 0, -c.HorizonDays)
	pairs, err := o.pairs.ActivePairs(ctx, from, targetDate)
	if err != nil {
		return nil, err
	}

	var recs []model.CapacityRecommendation
	for _, p := range pairs {
		st, err := o.engine.PairStats(ctx, p.StationID, p.VehicleTypeID, from, targetDate)
		if err != nil {
			return nil, err
		}
		if st == nil {
			// insufficient data is not an error, the pair just drops out
			continue
		}
		required, err := stats.RequiredUnits(st.P90, c.AvgTripHours, c.TurnaroundHours)
		if err != nil {
			return nil, err
		}
		avail, err := o.loader.PeakAvailable(ctx, p.StationID, p.VehicleTypeID, targetDate)
		if err != nil {
			return nil, err
		}
		recs = append(recs, Recommend(p.StationID, p.VehicleTypeID, st.P90, required, avail, c.SLAMinutes))
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority > recs[j].Priority })
	return recs, nil
}

// GenerateAdvice runs the full planning flow for targetDate. A result is
// always returned unless the constraints are invalid or the historical reads
// fail; advisory failures are absorbed by the fallback and an audit write
// failure is logged without affecting the response.
func (o *Orchestrator) GenerateAdvice(ctx context.Context, targetDate time.Time, c model.PlanningConstraints, actor string) (*model.CapacityAdviceResponse, error) {
	if err := ValidateConstraints(&c); err != nil {
		return nil, err
	}
	start := o.now()

	baseline, err := o.Baseline(ctx, targetDate, c)
	if err != nil {
		return nil, err
	}
	o.log.Infof("baseline ready: %d pair(s) in %s", len(baseline), o.now().Sub(start))

	req := advisory.Request{Constraints: c, Baseline: baseline}
	resp := o.advisor.GetAdvice(ctx, req)

	latency := o.now().Sub(start)
	fallbackUsed := resp.Summary.Notes == advisory.FallbackNote
	runID := uuid.NewString()
	o.persistAudit(ctx, runID, targetDate, actor, req, resp, latency)

	if err := o.sink.RecordPlanningRun(coremetrics.PlanningRun{
		RunID:        runID,
		TargetDate:   targetDate,
		Pairs:        len(baseline),
		Actions:      len(resp.Actions),
		FallbackUsed: fallbackUsed,
		Latency:      latency,
		Time:         start,
	}); err != nil {
		o.log.Warnf("metrics sink: %v", err)
	}
	o.log.Infof("advice generated: %d action(s), fallback=%t, total %s", len(resp.Actions), fallbackUsed, latency)
	return resp, nil
}

type auditInputs struct {
	TargetDate  string                         `json:"target_date"`
	Constraints model.PlanningConstraints      `json:"constraints"`
	Baseline    []model.CapacityRecommendation `json:"baseline"`
}

func (o *Orchestrator) persistAudit(ctx context.Context, runID string, targetDate time.Time, actor string,
	req advisory.Request, resp *model.CapacityAdviceResponse, latency time.Duration) {
	if o.audit == nil {
		return
	}
	inputs, err := json.Marshal(auditInputs{
		TargetDate:  targetDate.Format("2006-01-02"),
		Constraints: req.Constraints,
		Baseline:    req.Baseline,
	})
	if err != nil {
		o.log.Errorf("audit: marshal inputs: %v", err)
		return
	}
	output, err := json.Marshal(resp)
	if err != nil {
		o.log.Errorf("audit: marshal output: %v", err)
		return
	}
	if len(output) > maxAuditOutputBytes {
		output = output[:maxAuditOutputBytes]
	}
	sum := sha256.Sum256(inputs)
	run := model.AdviceRun{
		RunID:      runID,
		CreatedAt:  o.now(),
		Actor:      actor,
		InputsJSON: string(inputs),
		OutputJSON: string(output),
		LatencyMs:  latency.Milliseconds(),
		InputHash:  hex.EncodeToString(sum[:]),
	}
	if err := o.audit.SaveAdviceRun(ctx, run); err != nil {
		// planning must still answer even when the audit trail is lost
		o.log.Errorf("audit: save run %s: %v", runID, err)
	}
}
