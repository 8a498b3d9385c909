package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

// Q-learning actions.
const (
	ActionStay = iota
	ActionUp
	ActionDown
	NumActions
)

// zoneSize is the height in arena units of one relative-y bucket.
const zoneSize = 30

// Default hyperparameters.
const (
	DefaultLearningRate = 0.1
	DefaultGamma        = 0.9
	DefaultEpsilon      = 0.1
)

// State is the discretized observation used as a Q-table key.
type State struct {
	Zone  int // floor((ball.y - paddle.y) / 30)
	Dir   int // sign of ball vy
	Speed int // floor(|ball vx| / 2)
}

// EncodeState discretizes the paddle and ball into a State.
func EncodeState(p engine.Paddle, b engine.Ball) State {
	dir := 0
	switch {
	case b.VY > 0:
		dir = 1
	case b.VY < 0:
		dir = -1
	}
	return State{
		Zone:  int(math.Floor((b.Y - p.Y) / zoneSize)),
		Dir:   dir,
		Speed: int(math.Floor(math.Abs(b.VX) / 2)),
	}
}

// QLearning is a tabular Q-learning controller with an epsilon-greedy policy.
// It learns online through GiveReward.
type QLearning struct {
	mu           sync.Mutex
	LearningRate float64
	Gamma        float64
	Epsilon      float64

	q          map[State][NumActions]float64
	lastState  State
	lastAction int
	hasLast    bool
	rng        *rand.Rand
}

// NewQLearning creates an agent with an empty table.
func NewQLearning(lr, gamma, epsilon float64, seed int64) *QLearning {
	return &QLearning{
		LearningRate: lr,
		Gamma:        gamma,
		Epsilon:      epsilon,
		q:            make(map[State][NumActions]float64),
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// NewQLearningFromConfig creates an agent from config and loads the model
// file when one is configured. A missing model file is not an error.
func NewQLearningFromConfig(cfg config.QLearningConfig, seed int64) (*QLearning, error) {
	q := NewQLearning(cfg.LearningRate, cfg.Gamma, cfg.Epsilon, seed)
	if cfg.ModelPath == "" {
		return q, nil
	}
	if err := q.Load(cfg.ModelPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return q, err
	}
	return q, nil
}

// Decide picks an action epsilon-greedily and remembers it for the next reward.
func (ql *QLearning) Decide(p engine.Paddle, b engine.Ball, _ engine.Arena) engine.Intent {
	ql.mu.Lock()
	defer ql.mu.Unlock()

	state := EncodeState(p, b)
	values := ql.values(state)

	var action int
	if ql.rng.Float64() < ql.Epsilon {
		action = ql.rng.Intn(NumActions)
	} else {
		action = argmax(values)
	}

	ql.lastState = state
	ql.lastAction = action
	ql.hasLast = true
	return ActionIntent(action)
}

// GiveReward applies a temporal-difference update to the last decision:
// Q(s,a) += lr * (reward + gamma * max Q(s') - Q(s,a)).
// It does nothing before the first decision of an episode.
func (ql *QLearning) GiveReward(p engine.Paddle, b engine.Ball, reward float64) {
	ql.mu.Lock()
	defer ql.mu.Unlock()

	if !ql.hasLast {
		return
	}
	next := ql.values(EncodeState(p, b))
	best := next[argmax(next)]

	row := ql.values(ql.lastState)
	old := row[ql.lastAction]
	row[ql.lastAction] = old + ql.LearningRate*(reward+ql.Gamma*best-old)
	ql.q[ql.lastState] = row
}

// ResetEpisode forgets the last state and action.
func (ql *QLearning) ResetEpisode() {
	ql.mu.Lock()
	defer ql.mu.Unlock()
	ql.hasLast = false
}

// Value returns Q(s, a).
func (ql *QLearning) Value(s State, action int) float64 {
	ql.mu.Lock()
	defer ql.mu.Unlock()
	return ql.q[s][action]
}

// States returns the number of states in the table.
func (ql *QLearning) States() int {
	ql.mu.Lock()
	defer ql.mu.Unlock()
	return len(ql.q)
}

// values returns the row for a state, inserting zeros for unseen states.
func (ql *QLearning) values(s State) [NumActions]float64 {
	row, ok := ql.q[s]
	if !ok {
		ql.q[s] = row
	}
	return row
}

// argmax returns the first action with the highest value.
func argmax(values [NumActions]float64) int {
	best := 0
	for a := 1; a < NumActions; a++ {
		if values[a] > values[best] {
			best = a
		}
	}
	return best
}

// ActionIntent converts an action index to a paddle intent.
func ActionIntent(action int) engine.Intent {
	return engine.Intent{Up: action == ActionUp, Down: action == ActionDown}
}

type modelEntry struct {
	State  [3]int              `json:"state"`
	Values [NumActions]float64 `json:"values"`
}

type modelFile struct {
	Version int          `json:"version"`
	Entries []modelEntry `json:"entries"`
}

// Save writes the Q-table as JSON, creating parent directories.
func (ql *QLearning) Save(path string) error {
	path, err := config.ExpandHome(path)
	if err != nil {
		return fmt.Errorf("ai: save model: %w", err)
	}

	ql.mu.Lock()
	model := modelFile{Version: 1, Entries: make([]modelEntry, 0, len(ql.q))}
	for s, v := range ql.q {
		model.Entries = append(model.Entries, modelEntry{State: [3]int{s.Zone, s.Dir, s.Speed}, Values: v})
	}
	ql.mu.Unlock()

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("ai: encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ai: create model directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ai: write model: %w", err)
	}
	return nil
}

// Load replaces the Q-table from a JSON file and turns exploration off.
func (ql *QLearning) Load(path string) error {
	path, err := config.ExpandHome(path)
	if err != nil {
		return fmt.Errorf("ai: load model: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ai: read model: %w", err)
	}

	var model modelFile
	if err := json.Unmarshal(data, &model); err != nil {
		return fmt.Errorf("ai: decode model: %w", err)
	}

	table := make(map[State][NumActions]float64, len(model.Entries))
	for _, e := range model.Entries {
		table[State{Zone: e.State[0], Dir: e.State[1], Speed: e.State[2]}] = e.Values
	}

	ql.mu.Lock()
	ql.q = table
	ql.Epsilon = 0
	ql.hasLast = false
	ql.mu.Unlock()
	return nil
}

var _ engine.Controller = (*QLearning)(nil)

// SetEpsilon changes the exploration rate.
func (ql *QLearning) SetEpsilon(eps float64) {
	ql.mu.Lock()
	ql.Epsilon = eps
	ql.mu.Unlock()
}

func (ql *QLearning) epsilon() float64 {
	ql.mu.Lock()
	defer ql.mu.Unlock()
	return ql.Epsilon
}
