package ai

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

var arena = engine.NewArena(1200, 800)

func paddleAt(y float64) engine.Paddle {
	return engine.Paddle{PlayerID: "B1", X: 1130, Y: y, Width: 20, Height: 100, Speed: 6}
}

func TestStaticNeverMoves(t *testing.T) {
	in := Static{}.Decide(paddleAt(0), engine.Ball{Y: 700}, arena)
	if !in.IsIdle() {
		t.Errorf("Decide() = %+v, expected idle", in)
	}
}

func TestReactive(t *testing.T) {
	r := NewReactive(5)
	p := paddleAt(350) // center 400

	tests := []struct {
		name  string
		ballY float64
		dir   int
	}{
		{"ball above", 390, -1},
		{"ball below", 410, 1},
		{"inside dead zone", 403, 0},
		{"dead zone edge", 395, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := r.Decide(p, engine.Ball{Y: tc.ballY}, arena)
			if in.Direction() != tc.dir {
				t.Errorf("Decide() direction = %d, expected %d", in.Direction(), tc.dir)
			}
		})
	}
}

func TestPredictYBouncesOffWalls(t *testing.T) {
	b := engine.Ball{X: 600, Y: 790, VY: 10, Radius: 10}

	if y := PredictY(b, arena, 2); y != 780 {
		t.Errorf("PredictY() = %v, expected 780", y)
	}
	if b.Y != 790 {
		t.Error("PredictY() must not modify the real ball")
	}
}

func TestPredictiveSteersToPrediction(t *testing.T) {
	pr := NewPredictive(10, 0, 1)
	// Ball at the paddle's center height but falling fast.
	b := engine.Ball{X: 600, Y: 400, VX: 5, VY: 8, Radius: 10}

	if in := pr.Decide(paddleAt(350), b, arena); !in.Down {
		t.Errorf("Decide() = %+v, expected down", in)
	}
}

func TestEncodeState(t *testing.T) {
	p := paddleAt(300)

	tests := []struct {
		name     string
		ball     engine.Ball
		expected State
	}{
		{"below paddle top", engine.Ball{Y: 365, VX: 5.5, VY: -2}, State{Zone: 2, Dir: -1, Speed: 2}},
		{"above paddle top floors down", engine.Ball{Y: 290, VX: -3, VY: 1}, State{Zone: -1, Dir: 1, Speed: 1}},
		{"flat", engine.Ball{Y: 300, VX: 0, VY: 0}, State{Zone: 0, Dir: 0, Speed: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EncodeState(p, tc.ball); got != tc.expected {
				t.Errorf("EncodeState() = %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

func TestQLearningUpdate(t *testing.T) {
	q := NewQLearning(0.1, 0.9, 0, 1)
	p := paddleAt(300)
	b := engine.Ball{Y: 365, VX: 5, VY: 1}
	s := EncodeState(p, b)

	// No decision yet: reward is ignored.
	q.GiveReward(p, b, 1)
	if q.Value(s, ActionStay) != 0 {
		t.Fatal("reward before any decision should be ignored")
	}

	if in := q.Decide(p, b, arena); !in.IsIdle() {
		t.Fatalf("greedy choice on a zero row = %+v, expected stay", in)
	}
	q.GiveReward(p, b, 1)
	if got := q.Value(s, ActionStay); got != 0.1 {
		t.Errorf("Q after first reward = %v, expected 0.1", got)
	}

	q.Decide(p, b, arena)
	q.GiveReward(p, b, 1)
	if got, expected := q.Value(s, ActionStay), 0.199; math.Abs(got-expected) > 1e-12 {
		t.Errorf("Q after second reward = %v, expected %v", got, expected)
	}

	q.ResetEpisode()
	q.GiveReward(p, b, 100)
	if got := q.Value(s, ActionStay); got > 1 {
		t.Error("reward after ResetEpisode should be ignored")
	}
}

func TestQLearningSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "q.json")
	q := NewQLearning(0.1, 0.9, 0.3, 1)
	p := paddleAt(300)
	b := engine.Ball{Y: 365, VX: 5, VY: 1}

	q.SetEpsilon(0)
	q.Decide(p, b, arena)
	q.GiveReward(p, b, -5)
	if err := q.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := NewQLearning(0.1, 0.9, 0.5, 2)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s := EncodeState(p, b)
	if loaded.Value(s, ActionStay) != q.Value(s, ActionStay) {
		t.Errorf("loaded value = %v, expected %v", loaded.Value(s, ActionStay), q.Value(s, ActionStay))
	}
	if loaded.Epsilon != 0 {
		t.Errorf("Epsilon after Load() = %v, expected 0", loaded.Epsilon)
	}
	if loaded.States() != q.States() {
		t.Errorf("States() = %d, expected %d", loaded.States(), q.States())
	}
}

func TestQLearningFromConfigMissingModel(t *testing.T) {
	cfg := config.QLearningConfig{
		LearningRate: 0.1,
		Gamma:        0.9,
		Epsilon:      0.1,
		ModelPath:    filepath.Join(t.TempDir(), "absent.json"),
	}
	q, err := NewQLearningFromConfig(cfg, 1)
	if err != nil {
		t.Fatalf("NewQLearningFromConfig() error = %v", err)
	}
	if q.Epsilon != 0.1 {
		t.Errorf("Epsilon = %v, expected exploration kept without a model", q.Epsilon)
	}
}

func TestNewLevels(t *testing.T) {
	cfg := config.DefaultConfig().AI

	tests := []struct {
		level int
		check func(engine.Controller) bool
	}{
		{config.LevelStatic, func(c engine.Controller) bool { _, ok := c.(Static); return ok }},
		{config.LevelReactive, func(c engine.Controller) bool { _, ok := c.(*Reactive); return ok }},
		{config.LevelPredictive, func(c engine.Controller) bool { _, ok := c.(*Predictive); return ok }},
		{config.LevelQLearning, func(c engine.Controller) bool { _, ok := c.(*QLearning); return ok }},
		{99, func(c engine.Controller) bool { _, ok := c.(*Reactive); return ok }},
	}

	for _, tc := range tests {
		if c := New(tc.level, cfg); !tc.check(c) {
			t.Errorf("New(%d) = %T", tc.level, c)
		}
	}
}

func TestApplyRewards(t *testing.T) {
	e := engine.New(config.DefaultConfig())
	q := NewQLearning(0.1, 0.9, 0, 1)
	if err := e.SetController("A2", q); err != nil {
		t.Fatal(err)
	}
	p, _ := e.Paddle("A2")
	b := e.Ball()

	q.Decide(*p, b, e.Arena())
	s := EncodeState(*p, b)
	ApplyRewards(e, []engine.Event{{Kind: engine.EventHit, PlayerID: "A2"}})

	if got := q.Value(s, ActionStay); got != 0.1 {
		t.Errorf("Q after hit = %v, expected 0.1", got)
	}

	q.Decide(*p, b, e.Arena())
	ApplyRewards(e, []engine.Event{{Kind: engine.EventGoal, Team: "B"}})
	if got := q.Value(s, ActionStay); got >= 0.1 {
		t.Errorf("Q after conceding = %v, expected a penalty", got)
	}
}

func TestEnvStep(t *testing.T) {
	env := NewEnv(DefaultEnvConfig()) // paddle spans 120..180

	env.Ball = engine.Ball{X: 15, Y: 150, VX: -4, Radius: 1}
	if r, done := env.Step(ActionStay); r != RewardHit || done {
		t.Errorf("Step() on hit = %v, %v", r, done)
	}
	if env.Ball.VX <= 0 {
		t.Error("ball should bounce back after a hit")
	}

	env.Ball = engine.Ball{X: 15, Y: 10, VX: -4, Radius: 1}
	if r, done := env.Step(ActionStay); r != RewardMiss || !done {
		t.Errorf("Step() on miss = %v, %v", r, done)
	}
}

func TestTrain(t *testing.T) {
	agent := NewQLearning(0.1, 0.9, 0.2, 42)
	env := NewEnv(DefaultEnvConfig())

	var calls int
	res := Train(agent, env, TrainOptions{
		Episodes:     20,
		MaxSteps:     500,
		EpsilonDecay: 0.9,
		MinEpsilon:   0.05,
		Progress:     func(int, int, float64) { calls++ },
	})

	if res.Episodes != 20 || calls != 20 {
		t.Errorf("episodes = %d, progress calls = %d, expected 20", res.Episodes, calls)
	}
	if agent.States() == 0 {
		t.Error("training should populate the Q-table")
	}
	if agent.Epsilon < 0.05 || agent.Epsilon >= 0.2 {
		t.Errorf("Epsilon = %v, expected decayed within [0.05, 0.2)", agent.Epsilon)
	}
}
