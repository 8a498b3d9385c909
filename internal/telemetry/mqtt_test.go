package telemetry

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic string
	qos   byte
	data  []byte
}

type fakeClient struct {
	mu        sync.Mutex
	connected bool
	messages  []published
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload any) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, data: payload.([]byte)})
	return doneToken{}
}

func newTestPublisher(connected bool) (*Publisher, *fakeClient) {
	fc := &fakeClient{connected: connected}
	p := newPublisher(fc, "arena", log.New(io.Discard))
	p.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return p, fc
}

func TestNewDisabled(t *testing.T) {
	if _, err := New(config.TelemetryConfig{}, nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("New() error = %v, expected ErrDisabled", err)
	}
	if _, err := New(config.TelemetryConfig{Enabled: true}, nil); err == nil {
		t.Error("New() with empty broker should fail")
	}
}

func TestTopic(t *testing.T) {
	tests := []struct {
		prefix   string
		suffix   string
		expected string
	}{
		{"arena", TopicGoal, "arena/goal"},
		{"arena", TopicMatchEnd, "arena/match_end"},
		{"", TopicGoal, "multipong/goal"},
	}
	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			p := newPublisher(&fakeClient{}, tc.prefix, log.New(io.Discard))
			if got := p.Topic(tc.suffix); got != tc.expected {
				t.Errorf("Topic(%s) = %s, expected %s", tc.suffix, got, tc.expected)
			}
		})
	}
}

func TestPublishGoal(t *testing.T) {
	p, fc := newTestPublisher(true)
	p.PublishGoal(engine.Event{Kind: engine.EventGoal, Tick: 42, Team: "B"}, map[string]int{"A": 0, "B": 1})

	if len(fc.messages) != 1 {
		t.Fatalf("published %d messages, expected 1", len(fc.messages))
	}
	msg := fc.messages[0]
	if msg.topic != "arena/goal" || msg.qos != QoS {
		t.Errorf("topic/qos = %s/%d, expected arena/goal/%d", msg.topic, msg.qos, QoS)
	}

	var payload GoalPayload
	if err := json.Unmarshal(msg.data, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.Event != "goal" || payload.Team != "B" || payload.Tick != 42 || payload.Score["B"] != 1 {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Timestamp != "2024-01-01T12:00:00Z" {
		t.Errorf("timestamp = %s", payload.Timestamp)
	}
}

func TestPublishMatchEnd(t *testing.T) {
	p, fc := newTestPublisher(true)
	p.PublishMatchEnd(engine.Tally{
		TeamLeftScore:  1,
		TeamRightScore: 3,
		Players:        []engine.PlayerTally{{PlayerID: "alice", Team: "A"}},
	})

	if len(fc.messages) != 1 || fc.messages[0].topic != "arena/match_end" {
		t.Fatalf("messages = %+v, expected one on arena/match_end", fc.messages)
	}
	var payload MatchEndPayload
	if err := json.Unmarshal(fc.messages[0].data, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.Winner != "B" || len(payload.Tally.Players) != 1 {
		t.Errorf("payload = %+v, expected B winning with one player", payload)
	}
}

func TestPublishSkippedWhileDisconnected(t *testing.T) {
	p, fc := newTestPublisher(false)
	p.PublishGoal(engine.Event{Kind: engine.EventGoal, Team: "A"}, nil)
	p.PublishMatchEnd(engine.Tally{})

	if len(fc.messages) != 0 {
		t.Errorf("published %d messages while disconnected, expected 0", len(fc.messages))
	}
}
