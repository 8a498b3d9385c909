package engine

import (
	"fmt"
	"math"

	"github.com/vovakirdan/multipong/internal/config"
)

// Engine owns the authoritative state of one match.
type Engine struct {
	cfg   config.Config
	arena Arena
	ball  Ball

	left, right         *Team
	goalLeft, goalRight GoalZone

	running   bool
	tick      uint64
	rallyHits int

	// Goal pause: remaining ticks and the velocity to restore on serve.
	pauseTicks     int
	preGoalVX      float64
	preGoalVY      float64
	pauseTickTotal int
}

// New builds an engine with teams and paddles laid out from cfg.
// Only slots with a positive height get a paddle.
func New(cfg config.Config) *Engine {
	e := &Engine{
		cfg:            cfg,
		arena:          NewArena(cfg.Arena.Width, cfg.Arena.Height),
		left:           NewTeam(config.TeamLeft, SideLeft),
		right:          NewTeam(config.TeamRight, SideRight),
		pauseTickTotal: cfg.Goals.GoalPauseTicks(cfg.Server.TickRate),
	}
	e.goalLeft = NewGoalZone(SideLeft, e.arena, cfg.Goals.Size)
	e.goalRight = NewGoalZone(SideRight, e.arena, cfg.Goals.Size)

	e.layoutTeam(e.left, cfg.Paddles.LeftX)
	e.layoutTeam(e.right, e.arena.W()-cfg.Paddles.RightInset)

	cx, cy := e.arena.Center()
	e.ball = NewBall(cx, cy, cfg.Ball.Radius)
	return e
}

// layoutTeam splits the arena height evenly between the team's active
// paddles and centers each paddle in its zone.
func (e *Engine) layoutTeam(t *Team, x float64) {
	slots := e.cfg.TeamSlots(t.Name)
	if len(slots) == 0 {
		return
	}
	zoneH := e.arena.H() / float64(len(slots))
	for i, slot := range slots {
		p := NewPaddle(slot, x, 0, e.cfg.Paddles.Width, e.cfg.Paddles.SlotHeight(slot), e.cfg.Paddles.Speed)
		if !e.cfg.Paddles.UnrestrictedY {
			p.Zone = &Zone{Top: float64(i) * zoneH, Bottom: float64(i+1) * zoneH}
		}
		p.Center(e.arena)
		t.AddPaddle(p)
	}
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config { return e.cfg }

// Arena returns the playfield.
func (e *Engine) Arena() Arena { return e.arena }

// Ball returns a copy of the ball.
func (e *Engine) Ball() Ball { return e.ball }

// SetBall overrides the ball state.
func (e *Engine) SetBall(b Ball) { e.ball = b }

// Left returns the left team (A).
func (e *Engine) Left() *Team { return e.left }

// Right returns the right team (B).
func (e *Engine) Right() *Team { return e.right }

// Paddles returns every paddle, left team first.
func (e *Engine) Paddles() []*Paddle {
	all := make([]*Paddle, 0, len(e.left.Paddles)+len(e.right.Paddles))
	all = append(all, e.left.Paddles...)
	return append(all, e.right.Paddles...)
}

// Paddle finds a paddle by player id.
func (e *Engine) Paddle(playerID string) (*Paddle, bool) {
	if p, ok := e.left.Paddle(playerID); ok {
		return p, true
	}
	return e.right.Paddle(playerID)
}

// SetController attaches a controller to a slot's paddle. A nil
// controller hands the paddle back to its human player.
func (e *Engine) SetController(playerID string, c Controller) error {
	p, ok := e.Paddle(playerID)
	if !ok {
		return fmt.Errorf("engine: no paddle for slot %q", playerID)
	}
	p.SetController(c)
	return nil
}

// Tick returns the number of ticks advanced since the last reset.
func (e *Engine) Tick() uint64 { return e.tick }

// Running reports whether the match is live.
func (e *Engine) Running() bool { return e.running }

// RallyHits returns the paddle hits since the last goal.
func (e *Engine) RallyHits() int { return e.rallyHits }

// GoalPaused reports whether a post-goal pause is in progress.
func (e *Engine) GoalPaused() bool { return e.pauseTicks > 0 }

// TimeLeft returns the seconds remaining on the match clock, or -1 when
// the match has no time limit.
func (e *Engine) TimeLeft() float64 {
	if e.cfg.Arena.MatchSeconds <= 0 {
		return -1
	}
	return max(0, e.cfg.Arena.MatchSeconds-e.elapsed())
}

func (e *Engine) elapsed() float64 {
	return float64(e.tick) / float64(max(1, e.cfg.Server.TickRate))
}

// Start makes the match live and serves the ball toward team B.
func (e *Engine) Start() {
	if e.running {
		return
	}
	e.running = true
	if !e.ball.IsMoving() && e.pauseTicks == 0 {
		e.ball.Serve(e.cfg.Ball.SpeedX, e.cfg.Ball.SpeedY)
	}
}

// Stop freezes the match. State is kept.
func (e *Engine) Stop() {
	e.running = false
}

// Reset returns the engine to its pre-match state: scores and stats
// zeroed, ball centered and at rest, paddles centered in their zones.
// Controllers stay attached. Calling Reset twice is the same as once.
func (e *Engine) Reset() {
	e.running = false
	e.tick = 0
	e.rallyHits = 0
	e.pauseTicks = 0
	e.preGoalVX, e.preGoalVY = 0, 0

	cx, cy := e.arena.Center()
	e.ball.Reset(cx, cy)
	for _, t := range []*Team{e.left, e.right} {
		t.Reset()
		for _, p := range t.Paddles {
			p.Center(e.arena)
		}
	}
}

// Advance runs one simulation tick. inputs maps player ids to intents
// for human-controlled paddles; missing entries mean no movement.
// Returns the events produced during the tick.
func (e *Engine) Advance(inputs map[string]Intent) []Event {
	if !e.running {
		return nil
	}
	e.tick++
	var events []Event

	if e.cfg.Arena.MatchSeconds > 0 {
		if e.elapsed() >= e.cfg.Arena.MatchSeconds {
			e.running = false
			return append(events, Event{Kind: EventMatchOver, Tick: e.tick})
		}
	}

	// 1. Goal pause.
	if e.pauseTicks > 0 {
		e.pauseTicks--
		if e.pauseTicks == 0 {
			events = append(events, e.serveAfterGoal())
		}
		return events
	}

	// 2. Paddles.
	e.movePaddles(inputs)

	// 3. Ball and top/bottom walls.
	prevX := e.ball.X
	e.ball.Move()
	e.ball.BounceWalls(e.arena)

	// 4. Back walls outside the goal mouth.
	e.bounceBackWalls()

	// 5-6. Collision and escalation.
	if hit := e.collide(prevX); hit != nil {
		hit.Stats.RecordHit()
		hit.Stretch = max(1, e.cfg.Paddles.HitStretch)
		e.escalate()
		events = append(events, Event{Kind: EventHit, Tick: e.tick, PlayerID: hit.PlayerID})
	}

	// 7. Decay.
	e.decay()

	// 8. Goal.
	if ev, ok := e.checkGoal(); ok {
		events = append(events, ev)
	}
	return events
}

func (e *Engine) movePaddles(inputs map[string]Intent) {
	for _, t := range []*Team{e.left, e.right} {
		for _, p := range t.Paddles {
			var in Intent
			if c := p.Controller(); c != nil {
				in = c.Decide(*p, e.ball, e.arena)
			} else {
				in = inputs[p.PlayerID]
			}
			p.Move(in, e.arena)
			p.relaxStretch(e.cfg.Paddles.StretchDecay)
		}
	}
}

func (e *Engine) bounceBackWalls() {
	b := &e.ball
	if b.X-b.Radius <= 0 && !e.goalLeft.Spans(b.Y) {
		b.X = b.Radius
		b.VX = math.Abs(b.VX)
	}
	if b.X+b.Radius >= e.arena.W() && !e.goalRight.Spans(b.Y) {
		b.X = e.arena.W() - b.Radius
		b.VX = -math.Abs(b.VX)
	}
}

// collide checks the paddles of the team the ball is moving toward and
// reflects the ball off the first one it overlaps. Only the front face
// counts: the ball's center must have been on the field side of the
// paddle before this tick's move (prevX). The ball is placed flush
// against the paddle face.
func (e *Engine) collide(prevX float64) *Paddle {
	b := &e.ball
	var team *Team
	switch {
	case b.VX < 0:
		team = e.left
	case b.VX > 0:
		team = e.right
	default:
		return nil
	}

	for _, p := range team.Paddles {
		if !p.Rect().TouchesCircle(b.X, b.Y, b.Radius) {
			continue
		}
		if team.Side == SideLeft && prevX < p.X+p.Width {
			continue
		}
		if team.Side == SideRight && prevX > p.X {
			continue
		}
		if team.Side == SideLeft {
			b.X = p.X + p.Width + b.Radius
			b.VX = math.Abs(b.VX)
		} else {
			b.X = p.X - b.Radius
			b.VX = -math.Abs(b.VX)
		}
		return p
	}
	return nil
}

// escalate speeds the ball up after a hit. The increment shrinks as the
// rally grows.
func (e *Engine) escalate() {
	inc := e.cfg.Ball.SpeedIncrement / (1 + e.cfg.Ball.RallyAdaptFactor*float64(e.rallyHits))
	e.rallyHits++

	b := &e.ball
	b.VX = sign(b.VX) * (math.Abs(b.VX) + inc)
	b.VY = sign(b.VY) * (math.Abs(b.VY) + inc)
	b.ClampSpeed(e.cfg.Ball.SpeedMax)
}

func (e *Engine) decay() {
	b := &e.ball
	b.VX *= e.cfg.Ball.Decay * e.cfg.Ball.DecayX
	b.VY *= e.cfg.Ball.Decay * e.cfg.Ball.DecayY
	b.ClampSpeed(e.cfg.Ball.SpeedMax)
}

func (e *Engine) checkGoal() (Event, bool) {
	var scorer, conceder *Team
	switch {
	case e.goalLeft.Crossed(e.ball):
		scorer, conceder = e.right, e.left
	case e.goalRight.Crossed(e.ball):
		scorer, conceder = e.left, e.right
	default:
		return Event{}, false
	}

	scorer.ScoreGoal()
	conceder.ConcedeGoal()
	e.rallyHits = 0

	e.preGoalVX, e.preGoalVY = e.ball.VX, e.ball.VY
	cx, cy := e.arena.Center()
	e.ball.Reset(cx, cy)

	e.pauseTicks = e.pauseTickTotal
	if e.pauseTicks == 0 {
		e.serveAfterGoal()
	}
	return Event{Kind: EventGoal, Tick: e.tick, Team: scorer.Name}, true
}

// serveAfterGoal sends the ball back the way it came at base horizontal
// speed, keeping its pre-goal vertical velocity.
func (e *Engine) serveAfterGoal() Event {
	dir := -sign(e.preGoalVX)
	if dir == 0 {
		dir = 1
	}
	e.ball.Serve(dir*e.cfg.Ball.SpeedX, e.preGoalVY)
	e.ball.ClampSpeed(e.cfg.Ball.SpeedMax)
	return Event{Kind: EventServe, Tick: e.tick}
}
