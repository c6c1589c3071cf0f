// Package notify pushes planning results to downstream consumers over
// MQTT. Operations dashboards and depot tooling subscribe to the plan and
// run topics instead of polling the store.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/fleetcap/core/metrics"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/infra/logger"
)

// Publisher pushes plan batches, planning run summaries and scheduled job
// outcomes.
type Publisher interface {
	PublishPlans(planDate time.Time, plans []model.RebalancingPlan) error
	PublishRun(run metrics.PlanningRun) error
	PublishJobRun(run metrics.JobRun) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) PublishPlans(time.Time, []model.RebalancingPlan) error { return nil }
func (Nop) PublishRun(metrics.PlanningRun) error                  { return nil }
func (Nop) PublishJobRun(metrics.JobRun) error                    { return nil }

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTPublisher implements Publisher over an Eclipse Paho connection.
type MQTTPublisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg Config) (*MQTTPublisher, error) {
	opts, err := newClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("notify")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTPublisher{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

func newClientOptions(cfg Config) (*paho.ClientOptions, error) {
	id := cfg.ClientID
	if id == "" {
		id = "fleetcap-notify-" + uuid.NewString()
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(id)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// PublishPlans publishes one plan batch on <prefix>/plans.
func (p *MQTTPublisher) PublishPlans(planDate time.Time, plans []model.RebalancingPlan) error {
	payload, err := json.Marshal(struct {
		PlanDate string                  `json:"plan_date"`
		Plans    []model.RebalancingPlan `json:"plans"`
	}{
		PlanDate: planDate.Format("2006-01-02"),
		Plans:    plans,
	})
	if err != nil {
		return err
	}
	return p.publish(p.prefix+"/plans", payload)
}

// PublishRun publishes one planning run summary on <prefix>/runs.
func (p *MQTTPublisher) PublishRun(run metrics.PlanningRun) error {
	payload, err := json.Marshal(struct {
		RunID      string `json:"run_id"`
		TargetDate string `json:"target_date"`
		Pairs      int    `json:"pairs"`
		Actions    int    `json:"actions"`
		Fallback   bool   `json:"fallback"`
		LatencyMs  int64  `json:"latency_ms"`
	}{
		RunID:      run.RunID,
		TargetDate: run.TargetDate.Format("2006-01-02"),
		Pairs:      run.Pairs,
		Actions:    run.Actions,
		Fallback:   run.FallbackUsed,
		LatencyMs:  run.Latency.Milliseconds(),
	})
	if err != nil {
		return err
	}
	return p.publish(p.prefix+"/runs", payload)
}

// PublishJobRun publishes one scheduled job iteration on <prefix>/jobs.
func (p *MQTTPublisher) PublishJobRun(run metrics.JobRun) error {
	payload, err := json.Marshal(struct {
		Job        string `json:"job"`
		Success    bool   `json:"success"`
		Items      int    `json:"items"`
		DurationMs int64  `json:"duration_ms"`
	}{
		Job:        run.Job,
		Success:    run.Success,
		Items:      run.Items,
		DurationMs: run.Duration.Milliseconds(),
	})
	if err != nil {
		return err
	}
	return p.publish(p.prefix+"/jobs", payload)
}

func (p *MQTTPublisher) publish(topic string, payload []byte) error {
	token := p.cli.Publish(topic, p.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Disconnect gracefully closes the MQTT connection.
func (p *MQTTPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

// ForwardRuns consumes planning runs from ch and publishes each one until
// ctx is cancelled or the channel closes.
func ForwardRuns(ctx context.Context, ch <-chan metrics.PlanningRun, pub Publisher, log logger.Logger) {
	for {
		select {
		case run, ok := <-ch:
			if !ok {
				return
			}
			if err := pub.PublishRun(run); err != nil {
				log.Warnf("publish run %s: %v", run.RunID, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// ForwardJobRuns consumes scheduled job outcomes from ch and publishes each
// one until ctx is cancelled or the channel closes.
func ForwardJobRuns(ctx context.Context, ch <-chan metrics.JobRun, pub Publisher, log logger.Logger) {
	for {
		select {
		case run, ok := <-ch:
			if !ok {
				return
			}
			if err := pub.PublishJobRun(run); err != nil {
				log.Warnf("publish job run %s: %v", run.Job, err)
			}
		case <-ctx.Done():
			return
		}
	}
}
