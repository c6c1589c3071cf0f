// Package app wires the configured subsystems into a running service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/fleetcap/api"
	"github.com/kilianp07/fleetcap/config"
	"github.com/kilianp07/fleetcap/core/advisory"
	"github.com/kilianp07/fleetcap/core/availability"
	coremetrics "github.com/kilianp07/fleetcap/core/metrics"
	"github.com/kilianp07/fleetcap/core/planner"
	"github.com/kilianp07/fleetcap/core/rebalance"
	"github.com/kilianp07/fleetcap/core/stats"
	infraadvisory "github.com/kilianp07/fleetcap/infra/advisory"
	"github.com/kilianp07/fleetcap/infra/logger"
	inframetrics "github.com/kilianp07/fleetcap/infra/metrics"
	"github.com/kilianp07/fleetcap/infra/notify"
	"github.com/kilianp07/fleetcap/infra/store"
	"github.com/kilianp07/fleetcap/internal/eventbus"
	"github.com/kilianp07/fleetcap/jobs"
)

// Service holds the wired planning engine and its background machinery.
type Service struct {
	Orchestrator *planner.Orchestrator

	cfg      *config.Config
	store    *store.Store
	runner   *jobs.Runner
	router   *api.Handler
	notifier notify.Publisher
	runBus   *eventbus.TypedBus[coremetrics.PlanningRun]
	jobBus   *eventbus.TypedBus[coremetrics.JobRun]
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	db, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	st := store.New(db)

	engine := stats.NewEngine(st)
	loader := availability.NewLoader(st, st, logger.New("availability"))

	var client advisory.Client
	if cfg.Advisory.Enabled {
		client = infraadvisory.NewOpenAIClient(cfg.Advisory)
	}
	advisor := advisory.NewResilient(client, logger.New("advisory"))

	runBus := eventbus.NewTyped[coremetrics.PlanningRun]()
	jobBus := eventbus.NewTyped[coremetrics.JobRun]()
	sinks := []coremetrics.MetricsSink{eventbus.NewSink(runBus, jobBus)}
	if cfg.Metrics.PrometheusEnabled {
		sink, err := inframetrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, inframetrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	sink := coremetrics.MetricsSink(inframetrics.NewMultiSink(sinks...))

	orch := planner.NewOrchestrator(engine, loader, advisor, st, st, sink, logger.New("planner"))

	var notifier notify.Publisher = notify.Nop{}
	if cfg.Notify.Enabled {
		pub, err := notify.NewMQTTPublisher(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("notify publisher: %w", err)
		}
		notifier = pub
	}

	jobLog := logger.New("jobs")
	var jobRecorder coremetrics.JobRecorder
	if rec, ok := sink.(coremetrics.JobRecorder); ok {
		jobRecorder = rec
	}
	runner := jobs.NewRunner(time.Duration(cfg.Jobs.WarmupSeconds)*time.Second, jobRecorder, jobLog)
	runner.Add(jobs.NewSnapshotJob(st, jobLog), time.Duration(cfg.Jobs.SnapshotIntervalSeconds)*time.Second)
	runner.Add(jobs.NewAggregateJob(st, time.Duration(cfg.Jobs.AggregateLookbackHours)*time.Hour, jobLog),
		time.Duration(cfg.Jobs.AggregateIntervalSeconds)*time.Second)
	runner.Add(jobs.NewForecastJob(engine, st, cfg.Jobs.HistoryWindowDays, jobLog),
		time.Duration(cfg.Jobs.ForecastIntervalSeconds)*time.Second)
	planJob := jobs.NewPlanJob(orch, rebalance.NewMatcher(cfg.Planner.UnitCost), st, cfg.Planner.Constraints, jobLog)
	planJob.SetNotifier(notifier)
	runner.Add(planJob, time.Duration(cfg.Jobs.PlanIntervalSeconds)*time.Second)

	handler := api.NewHandler(orch, st,
		time.Duration(cfg.API.ConstraintTTLMinutes)*time.Minute, logger.New("api"))

	return &Service{
		Orchestrator: orch,
		cfg:          cfg,
		store:        st,
		runner:       runner,
		router:       handler,
		notifier:     notifier,
		runBus:       runBus,
		jobBus:       jobBus,
		log:          log,
	}, nil
}

// Run starts the background jobs and servers and blocks until the context
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.runner.Start(ctx)
	go notify.ForwardRuns(ctx, s.runBus.Subscribe(), s.notifier, s.log)
	go notify.ForwardJobRuns(ctx, s.jobBus.Subscribe(), s.notifier, s.log)

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := inframetrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Enabled {
		go func() {
			router := api.NewRouter(s.router, s.cfg.API)
			if err := api.Serve(ctx, router, s.cfg.API.Port, s.log); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}

	s.log.Infof("fleetcap service started")
	<-ctx.Done()
	s.Close()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() {
	s.runBus.Close()
	s.jobBus.Close()
	if pub, ok := s.notifier.(*notify.MQTTPublisher); ok {
		pub.Disconnect()
	}
}
