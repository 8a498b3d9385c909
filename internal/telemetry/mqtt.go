// Package telemetry publishes goal and match events to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

// Topic suffixes appended to the configured prefix.
const (
	TopicGoal     = "goal"
	TopicMatchEnd = "match_end"
)

// QoS used for every message.
const QoS byte = 1

// ErrDisabled is returned by New when telemetry is turned off.
var ErrDisabled = errors.New("telemetry: disabled")

// client is the part of mqtt.Client the publisher needs.
type client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// Publisher sends match events as JSON. It implements
// multiplayer.EventPublisher and never blocks the caller.
type Publisher struct {
	client   client
	conn     mqtt.Client // nil in tests
	prefix   string
	hostname string
	logger   *log.Logger
	now      func() time.Time
}

// GoalPayload is published on <prefix>/goal.
type GoalPayload struct {
	Event     string         `json:"event"`
	Team      string         `json:"team"`
	Tick      uint64         `json:"tick"`
	Score     map[string]int `json:"score"`
	Host      string         `json:"host,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// MatchEndPayload is published on <prefix>/match_end.
type MatchEndPayload struct {
	Event     string       `json:"event"`
	Winner    string       `json:"winner"`
	Tally     engine.Tally `json:"tally"`
	Host      string       `json:"host,omitempty"`
	Timestamp string       `json:"timestamp"`
}

// New configures an MQTT client for cfg. It does not connect.
func New(cfg config.TelemetryConfig, logger *log.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("telemetry: broker address is empty")
	}
	if logger == nil {
		logger = log.Default()
	}

	hostname, _ := os.Hostname()
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("multipong-%s", hostname)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "err", err)
	})

	conn := mqtt.NewClient(opts)
	p := newPublisher(conn, cfg.TopicPrefix, logger)
	p.conn = conn
	p.hostname = hostname
	return p, nil
}

func newPublisher(c client, prefix string, logger *log.Logger) *Publisher {
	if prefix == "" {
		prefix = "multipong"
	}
	return &Publisher{
		client: c,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Connect dials the broker, waiting at most timeout.
func (p *Publisher) Connect(timeout time.Duration) error {
	if p.conn == nil {
		return nil
	}
	token := p.conn.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("telemetry: connect timed out after %s", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: connect: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.conn != nil && p.conn.IsConnected() {
		p.conn.Disconnect(250)
	}
}

// Topic returns the full topic for a suffix.
func (p *Publisher) Topic(suffix string) string {
	return p.prefix + "/" + suffix
}

// PublishGoal implements multiplayer.EventPublisher.
func (p *Publisher) PublishGoal(ev engine.Event, score map[string]int) {
	p.publish(TopicGoal, GoalPayload{
		Event:     ev.Kind.String(),
		Team:      ev.Team,
		Tick:      ev.Tick,
		Score:     score,
		Host:      p.hostname,
		Timestamp: p.timestamp(),
	})
}

// PublishMatchEnd implements multiplayer.EventPublisher.
func (p *Publisher) PublishMatchEnd(t engine.Tally) {
	p.publish(TopicMatchEnd, MatchEndPayload{
		Event:     TopicMatchEnd,
		Winner:    t.Winner(config.TeamLeft, config.TeamRight),
		Tally:     t,
		Host:      p.hostname,
		Timestamp: p.timestamp(),
	})
}

func (p *Publisher) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}

// publish drops the message while disconnected and waits for the broker
// acknowledgement on its own goroutine.
func (p *Publisher) publish(suffix string, payload any) {
	if !p.client.IsConnected() {
		return
	}
	topic := p.Topic(suffix)

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("failed to marshal mqtt message", "topic", topic, "err", err)
		return
	}

	token := p.client.Publish(topic, QoS, false, data)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			p.logger.Warn("mqtt publish failed", "topic", topic, "err", err)
		}
	}()
}
