// Package config provides YAML-based configuration loading for the
// multipong server, client and tooling.
package config

import (
	"fmt"
	"sort"
	"time"
)

// Team identifiers. Slot IDs are a team letter followed by a 1-based index.
const (
	TeamLeft  = "A"
	TeamRight = "B"
)

// MaxPaddlesPerTeam is the number of slot positions each team has.
const MaxPaddlesPerTeam = 4

// Config contains all tunable parameters of a match and its surroundings.
// It is loaded once at startup and passed by value afterwards.
type Config struct {
	Arena     ArenaConfig     `yaml:"arena"`
	Ball      BallConfig      `yaml:"ball"`
	Goals     GoalsConfig     `yaml:"goals"`
	Paddles   PaddlesConfig   `yaml:"paddles"`
	AI        AIConfig        `yaml:"ai"`
	Server    ServerConfig    `yaml:"server"`
	Client    ClientConfig    `yaml:"client"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ArenaConfig defines the playfield.
type ArenaConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	MatchSeconds float64 `yaml:"match_seconds"` // 0 = endless
}

// BallConfig defines ball physics.
type BallConfig struct {
	Radius           float64 `yaml:"radius"`
	SpeedX           float64 `yaml:"speed_x"`
	SpeedY           float64 `yaml:"speed_y"`
	SpeedIncrement   float64 `yaml:"speed_increment_on_hit"`
	SpeedMax         float64 `yaml:"speed_max"`
	Decay            float64 `yaml:"decay"`
	DecayX           float64 `yaml:"decay_x"`
	DecayY           float64 `yaml:"decay_y"`
	RallyAdaptFactor float64 `yaml:"rally_adapt_factor"`
}

// GoalsConfig defines the goal mouths on both back walls.
type GoalsConfig struct {
	Size         float64 `yaml:"size"`
	PauseSeconds float64 `yaml:"pause_seconds"`
}

// PaddlesConfig defines paddle geometry and movement.
type PaddlesConfig struct {
	Width         float64            `yaml:"width"`
	Height        float64            `yaml:"height"`
	Speed         float64            `yaml:"speed"`
	CountPerTeam  int                `yaml:"count_per_team"`
	Heights       map[string]float64 `yaml:"heights"` // per-slot override, <= 0 disables the slot
	UnrestrictedY bool               `yaml:"unrestricted_y"`
	LeftX         float64            `yaml:"left_x"`
	RightInset    float64            `yaml:"right_inset"` // right paddle x = arena width - inset
	HitStretch    float64            `yaml:"hit_stretch"`
	StretchDecay  float64            `yaml:"stretch_decay"`
}

// AIConfig defines bot behavior.
type AIConfig struct {
	Difficulty     DifficultyPreset `yaml:"difficulty"`
	Level          int              `yaml:"level"`
	FillEmptySlots bool             `yaml:"fill_empty_slots"`
	DeadZone       float64          `yaml:"dead_zone"`
	PredictSteps   int              `yaml:"predict_steps"`
	PredictNoise   float64          `yaml:"predict_noise"`
	QLearning      QLearningConfig  `yaml:"qlearning"`
}

// QLearningConfig holds hyperparameters for the learned controller.
type QLearningConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Gamma        float64 `yaml:"gamma"`
	Epsilon      float64 `yaml:"epsilon"`
	ModelPath    string  `yaml:"model_path"`
}

// ServerConfig defines the network side of the game server.
type ServerConfig struct {
	Address            string   `yaml:"address"`
	SSHAddress         string   `yaml:"ssh_address"`
	HostKeyPath        string   `yaml:"host_key_path"`
	TickRate           int      `yaml:"tick_rate"`
	BroadcastEvery     int      `yaml:"broadcast_every"`
	SessionTimeout     float64  `yaml:"session_timeout_seconds"`
	TimeoutCheckPeriod float64  `yaml:"timeout_check_seconds"`
	CountdownSeconds   int      `yaml:"countdown_seconds"`
	MinPlayers         int      `yaml:"min_players"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	MaxConnsPerIP      int      `yaml:"max_conns_per_ip"`
	MessageRate        int      `yaml:"message_rate"` // messages per second per IP
	LogLevel           string   `yaml:"log_level"`
}

// ClientConfig defines the terminal client.
type ClientConfig struct {
	ServerURL   string  `yaml:"server_url"`
	FPS         int     `yaml:"fps"`
	BufferSize  int     `yaml:"buffer_size"`
	RenderDelay float64 `yaml:"render_delay_seconds"`
}

// StorageConfig defines where match statistics are persisted.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// TelemetryConfig defines the optional MQTT publisher.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// SlotID builds a slot identifier such as "A1".
func SlotID(team string, index int) string {
	return fmt.Sprintf("%s%d", team, index+1)
}

// AllSlots returns every slot identifier in lexicographic order.
func AllSlots() []string {
	slots := make([]string, 0, 2*MaxPaddlesPerTeam)
	for _, team := range []string{TeamLeft, TeamRight} {
		for i := range MaxPaddlesPerTeam {
			slots = append(slots, SlotID(team, i))
		}
	}
	return slots
}

// SlotHeight returns the paddle height configured for a slot.
// A result <= 0 means the slot is inactive.
func (p PaddlesConfig) SlotHeight(slot string) float64 {
	if h, ok := p.Heights[slot]; ok {
		return h
	}
	if len(slot) < 2 {
		return 0
	}
	index := int(slot[1] - '1')
	if index < 0 || index >= p.CountPerTeam {
		return 0
	}
	return p.Height
}

// ActiveSlots returns the slots with a positive paddle height, sorted.
func (c Config) ActiveSlots() []string {
	var active []string
	for _, slot := range AllSlots() {
		if c.Paddles.SlotHeight(slot) > 0 {
			active = append(active, slot)
		}
	}
	sort.Strings(active)
	return active
}

// TeamSlots returns the active slots of one team, in index order.
func (c Config) TeamSlots(team string) []string {
	var slots []string
	for _, slot := range c.ActiveSlots() {
		if slot[:1] == team {
			slots = append(slots, slot)
		}
	}
	return slots
}

// TickInterval returns the duration of one simulation tick.
func (s ServerConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(max(1, s.TickRate))
}

// SessionTimeoutDuration returns the idle eviction window.
func (s ServerConfig) SessionTimeoutDuration() time.Duration {
	return seconds(s.SessionTimeout)
}

// TimeoutCheckDuration returns how often idle sessions are checked.
func (s ServerConfig) TimeoutCheckDuration() time.Duration {
	return seconds(s.TimeoutCheckPeriod)
}

// GoalPauseTicks converts the goal pause into whole ticks at the given rate.
func (g GoalsConfig) GoalPauseTicks(tickRate int) int {
	return int(g.PauseSeconds*float64(tickRate) + 0.5)
}

// Validate reports the first configuration value that cannot produce a playable match.
func (c Config) Validate() error {
	switch {
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("config: arena size must be positive, got %dx%d", c.Arena.Width, c.Arena.Height)
	case c.Ball.Radius <= 0:
		return fmt.Errorf("config: ball radius must be positive, got %v", c.Ball.Radius)
	case c.Server.TickRate <= 0:
		return fmt.Errorf("config: tick rate must be positive, got %d", c.Server.TickRate)
	case c.Paddles.CountPerTeam < 1 || c.Paddles.CountPerTeam > MaxPaddlesPerTeam:
		return fmt.Errorf("config: paddles per team must be 1..%d, got %d", MaxPaddlesPerTeam, c.Paddles.CountPerTeam)
	case c.Ball.SpeedMax <= 0:
		return fmt.Errorf("config: ball speed max must be positive, got %v", c.Ball.SpeedMax)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
