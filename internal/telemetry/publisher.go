// Package telemetry optionally publishes the fused result and per-module
// health to an MQTT broker, grounded on tve-devices/cmd/mqttradio/mqtt.go's
// newMQ/Publish pattern — simplified here to one-way publish, since this
// node has no inbound command topic to subscribe to.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rmingon/EchoGuard-8/internal/config"
	"github.com/rmingon/EchoGuard-8/internal/fusion"
)

// report is the JSON payload published to cfg.Topic.
type report struct {
	CycleID         string `json:"cycle_id"`
	Status          string `json:"status"`
	HasFix          bool   `json:"has_fix"`
	LatE7           int32  `json:"lat_e7"`
	LonE7           int32  `json:"lon_e7"`
	AltCm           int32  `json:"alt_cm"`
	UsedModules     uint8  `json:"used_modules"`
	RejectedModules uint8  `json:"rejected_modules"`
	AvgHDOPCenti    uint16 `json:"avg_hdop_centi"`
	FaultScores     [8]int `json:"fault_scores"`
}

// Source supplies the data points Publisher reports on each tick.
type Source interface {
	FusionSnapshot() fusion.Result
	FaultScore(idx int) int
}

// Publisher connects to an MQTT broker and periodically publishes a Source
// snapshot as JSON, matching tve-devices' reconnect-tolerant client usage.
type Publisher struct {
	conn   mqtt.Client
	topic  string
	source Source
	logger *log.Logger
}

// NewPublisher connects to cfg's broker. It returns an error immediately if
// the initial connection attempt does not succeed within 10 seconds, the
// same timeout tve-devices/cmd/mqttradio/mqtt.go's newMQ uses.
func NewPublisher(cfg config.MQTT, source Source, logger *log.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.ClientID = "echoguard8d"
	opts.Username = cfg.User
	opts.Password = cfg.Password
	opts.AutoReconnect = true

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect to %s:%d: %w", cfg.Host, cfg.Port, token.Error())
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "echoguard8/fusion"
	}

	return &Publisher{conn: client, topic: topic, source: source, logger: logger}, nil
}

// Run publishes one report per tick until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.conn.Disconnect(250)
			return
		case <-ticker.C:
			p.publishOnce()
		}
	}
}

func (p *Publisher) publishOnce() {
	result := p.source.FusionSnapshot()
	r := report{
		CycleID:         result.CycleID,
		Status:          result.Status.String(),
		HasFix:          result.HasFix,
		LatE7:           result.LatE7,
		LonE7:           result.LonE7,
		AltCm:           result.AltCm,
		UsedModules:     result.UsedModules,
		RejectedModules: result.RejectedModules,
		AvgHDOPCenti:    result.AvgHDOPCenti,
	}
	for i := 0; i < 8; i++ {
		r.FaultScores[i] = p.source.FaultScore(i + 1)
	}

	payload, err := json.Marshal(r)
	if err != nil {
		p.logger.Printf("telemetry: marshal report: %v", err)
		return
	}
	p.conn.Publish(p.topic, 1, false, payload)
}
