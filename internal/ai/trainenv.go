package ai

import (
	"math"

	"github.com/vovakirdan/multipong/internal/core"
	"github.com/vovakirdan/multipong/internal/engine"
)

// EnvConfig sizes the headless training environment.
type EnvConfig struct {
	Width        float64
	Height       float64
	PaddleHeight float64
	PaddleSpeed  float64
	BallSpeed    float64
	PaddleX      float64
}

// DefaultEnvConfig returns the small single-paddle training court.
func DefaultEnvConfig() EnvConfig {
	return EnvConfig{
		Width:        400,
		Height:       300,
		PaddleHeight: 60,
		PaddleSpeed:  5,
		BallSpeed:    4,
		PaddleX:      10,
	}
}

// paddleFace is the distance from the paddle x at which the ball is
// checked against the paddle.
const paddleFace = 10.0

// Env is a minimal court with one paddle on the left. The ball bounces off
// the top, bottom and right walls; an episode ends when the paddle misses.
type Env struct {
	cfg     EnvConfig
	Ball    engine.Ball
	PaddleY float64
}

// NewEnv creates an environment and resets it.
func NewEnv(cfg EnvConfig) *Env {
	e := &Env{cfg: cfg}
	e.Reset()
	return e
}

// Reset centers the ball and paddle and serves diagonally toward the right.
func (e *Env) Reset() {
	e.Ball = engine.Ball{
		X:      e.cfg.Width / 2,
		Y:      e.cfg.Height / 2,
		VX:     e.cfg.BallSpeed,
		VY:     e.cfg.BallSpeed,
		Radius: 1,
	}
	e.PaddleY = e.cfg.Height/2 - e.cfg.PaddleHeight/2
}

// Arena returns the environment bounds.
func (e *Env) Arena() engine.Arena {
	return engine.NewArena(int(e.cfg.Width), int(e.cfg.Height))
}

// Paddle returns the agent's paddle as an engine paddle value.
func (e *Env) Paddle() engine.Paddle {
	return engine.Paddle{
		PlayerID: "trainee",
		X:        e.cfg.PaddleX,
		Y:        e.PaddleY,
		Width:    paddleFace,
		Height:   e.cfg.PaddleHeight,
		Speed:    e.cfg.PaddleSpeed,
	}
}

// Step applies an action and advances the ball. It returns the reward and
// whether the episode is over.
func (e *Env) Step(action int) (float64, bool) {
	switch action {
	case ActionUp:
		e.PaddleY -= e.cfg.PaddleSpeed
	case ActionDown:
		e.PaddleY += e.cfg.PaddleSpeed
	}
	e.PaddleY = core.ClampF(e.PaddleY, 0, e.cfg.Height-e.cfg.PaddleHeight)

	b := &e.Ball
	b.Move()
	if b.Y <= 0 || b.Y >= e.cfg.Height {
		b.VY = -b.VY
		b.Y = core.ClampF(b.Y, 0, e.cfg.Height)
	}

	reward, done := 0.0, false
	if b.VX < 0 && b.X <= e.cfg.PaddleX+paddleFace {
		if b.Y >= e.PaddleY && b.Y <= e.PaddleY+e.cfg.PaddleHeight {
			b.VX = math.Abs(b.VX)
			reward = RewardHit
		} else {
			reward = RewardMiss
			done = true
		}
	}

	if b.X >= e.cfg.Width {
		b.VX = -math.Abs(b.VX)
	}
	return reward, done
}

// TrainOptions controls a training run.
type TrainOptions struct {
	Episodes     int
	MaxSteps     int     // per episode
	EpsilonDecay float64 // multiplied into epsilon after each episode; 0 keeps it fixed
	MinEpsilon   float64
	// Progress, when set, is called after each episode.
	Progress func(episode, hits int, totalReward float64)
}

// TrainResult summarizes a training run.
type TrainResult struct {
	Episodes   int
	TotalHits  int
	BestHits   int
	MeanReward float64
}

// Train runs episodes of the environment against the agent.
func Train(agent *QLearning, env *Env, opts TrainOptions) TrainResult {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 5000
	}

	var res TrainResult
	var rewardSum float64
	arena := env.Arena()

	for ep := range opts.Episodes {
		env.Reset()
		agent.ResetEpisode()

		hits := 0
		total := 0.0
		for range maxSteps {
			intent := agent.Decide(env.Paddle(), env.Ball, arena)
			r, done := env.Step(intentAction(intent))
			agent.GiveReward(env.Paddle(), env.Ball, r)
			total += r
			if r > 0 {
				hits++
			}
			if done {
				break
			}
		}

		res.Episodes++
		res.TotalHits += hits
		res.BestHits = max(res.BestHits, hits)
		rewardSum += total

		if opts.EpsilonDecay > 0 {
			agent.SetEpsilon(max(opts.MinEpsilon, agent.epsilon()*opts.EpsilonDecay))
		}
		if opts.Progress != nil {
			opts.Progress(ep+1, hits, total)
		}
	}

	if res.Episodes > 0 {
		res.MeanReward = rewardSum / float64(res.Episodes)
	}
	return res
}

func intentAction(in engine.Intent) int {
	switch in.Direction() {
	case -1:
		return ActionUp
	case 1:
		return ActionDown
	}
	return ActionStay
}
