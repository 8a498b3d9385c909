package ai

import (
	"github.com/vovakirdan/multipong/internal/engine"
)

// Rewards given to learning controllers during live matches.
const (
	RewardHit  = 1.0
	RewardMiss = -5.0
)

// Learner is a controller that learns from rewards.
type Learner interface {
	GiveReward(p engine.Paddle, b engine.Ball, reward float64)
	ResetEpisode()
}

var _ Learner = (*QLearning)(nil)

// ApplyRewards feeds the events of one tick to learning controllers: a hit
// rewards the hitting paddle and a goal penalizes every paddle of the
// conceding team.
func ApplyRewards(e *engine.Engine, events []engine.Event) {
	b := e.Ball()
	for _, ev := range events {
		switch ev.Kind {
		case engine.EventHit:
			if p, ok := e.Paddle(ev.PlayerID); ok {
				reward(p, b, RewardHit)
			}
		case engine.EventGoal:
			conceding := e.Left()
			if ev.Team == e.Left().Name {
				conceding = e.Right()
			}
			for _, p := range conceding.Paddles {
				reward(p, b, RewardMiss)
			}
		}
	}
}

func reward(p *engine.Paddle, b engine.Ball, r float64) {
	if l, ok := p.Controller().(Learner); ok {
		l.GiveReward(*p, b, r)
	}
}

// ResetEpisodes clears episode memory of every learning controller.
func ResetEpisodes(e *engine.Engine) {
	for _, p := range e.Paddles() {
		if l, ok := p.Controller().(Learner); ok {
			l.ResetEpisode()
		}
	}
}
