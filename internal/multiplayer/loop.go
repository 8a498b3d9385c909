package multiplayer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/multipong/internal/ai"
	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/protocol"
)

// GameLoop drives the engine at a fixed rate. It is the only goroutine
// that touches the engine; everything else talks to it through commands
// and reads the published snapshot.
type GameLoop struct {
	cfg      config.Config
	engine   *engine.Engine
	sessions *SessionRegistry
	lobby    *lobby.Lobby
	logger   *log.Logger

	saver     MatchResultSaver // optional
	publisher EventPublisher   // optional
	onEnd     func(engine.Tally)

	cmdMu    sync.Mutex
	commands []loopCommand
	done     chan struct{}
	doneOnce sync.Once

	cycles      uint64
	lastOverrun time.Time
	running     atomic.Bool
	snapshot    atomic.Pointer[engine.Snapshot]
	saves       sync.WaitGroup
}

// NewGameLoop creates a loop over a fresh engine built from cfg.
func NewGameLoop(cfg config.Config, sessions *SessionRegistry, l *lobby.Lobby, logger *log.Logger) *GameLoop {
	if logger == nil {
		logger = log.Default()
	}
	g := &GameLoop{
		cfg:      cfg,
		engine:   engine.New(cfg),
		sessions: sessions,
		lobby:    l,
		logger:   logger,
		done:     make(chan struct{}),
	}
	snap := g.engine.Snapshot()
	g.snapshot.Store(&snap)
	return g
}

// SetResultSaver sets the optional match result saver.
func (g *GameLoop) SetResultSaver(saver MatchResultSaver) {
	g.saver = saver
}

// SetPublisher sets the optional event publisher.
func (g *GameLoop) SetPublisher(p EventPublisher) {
	g.publisher = p
}

// OnMatchEnd sets a callback run on the loop goroutine after a match ends.
func (g *GameLoop) OnMatchEnd(fn func(engine.Tally)) {
	g.onEnd = fn
}

// Running reports whether a match is live, as of the last tick.
func (g *GameLoop) Running() bool {
	return g.running.Load()
}

// Snapshot returns the state published by the last tick.
func (g *GameLoop) Snapshot() engine.Snapshot {
	return *g.snapshot.Load()
}

// StartMatch asks the loop to start the match on its next tick.
func (g *GameLoop) StartMatch() { g.send(startMatchCmd{}) }

// ResetMatch asks the loop to stop and reset the match.
func (g *GameLoop) ResetMatch() { g.send(resetMatchCmd{}) }

// SetController asks the loop to hand a slot to c, or to human input when c is nil.
func (g *GameLoop) SetController(slot string, c engine.Controller) {
	g.send(setControllerCmd{Slot: slot, Controller: c})
}

// SyncSlot asks the loop to refresh a slot's controller from the lobby.
func (g *GameLoop) SyncSlot(slot string) { g.send(syncSlotCmd{Slot: slot}) }

func (g *GameLoop) send(cmd loopCommand) {
	g.cmdMu.Lock()
	g.commands = append(g.commands, cmd)
	g.cmdMu.Unlock()
}

// Run ticks until ctx is cancelled or Stop is called. Each cycle advances
// the engine exactly once; when a cycle overruns its budget the next one
// starts immediately.
func (g *GameLoop) Run(ctx context.Context) {
	interval := g.cfg.Server.TickInterval()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		start := time.Now()
		g.Step()
		elapsed := time.Since(start)

		wait := interval - elapsed
		if wait <= 0 {
			g.overrun(elapsed, interval)
			wait = 0
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		case <-g.done:
			return
		}
	}
}

// Stop ends Run and waits for pending result saves.
func (g *GameLoop) Stop() {
	g.doneOnce.Do(func() {
		close(g.done)
	})
	g.saves.Wait()
}

func (g *GameLoop) overrun(elapsed, budget time.Duration) {
	now := time.Now()
	if now.Sub(g.lastOverrun) < time.Second {
		return
	}
	g.lastOverrun = now
	g.logger.Warn("tick overrun", "elapsed", elapsed, "budget", budget, "tick", g.engine.Tick())
}

// Step runs one cycle: apply commands, read inputs, advance the engine,
// hand out rewards and broadcast the snapshot.
func (g *GameLoop) Step() []engine.Event {
	g.drainCommands()

	inputs := g.slotInputs()
	events := g.engine.Advance(inputs)
	ai.ApplyRewards(g.engine, events)
	g.cycles++

	snap := g.engine.Snapshot()
	g.snapshot.Store(&snap)
	g.running.Store(g.engine.Running())

	every := uint64(max(1, g.cfg.Server.BroadcastEvery))
	sent := 0
	if g.cycles%every == 0 {
		sent = g.sessions.Broadcast(protocol.NewSnapshot(snap), "")
	}

	for _, ev := range events {
		switch ev.Kind {
		case engine.EventGoal:
			g.logger.Info("goal", "team", ev.Team, "score", snap.Score)
			if g.publisher != nil {
				g.publisher.PublishGoal(ev, snap.Score)
			}
		case engine.EventMatchOver:
			g.endMatch()
		}
	}

	if rate := uint64(max(1, g.cfg.Server.TickRate)); g.cycles%rate == 0 {
		g.logger.Debug("tick",
			"tick", snap.Tick,
			"players", g.sessions.Count(),
			"sent", sent,
			"score", snap.Score,
			"running", snap.IsRunning,
		)
	}
	return events
}

// slotInputs maps session inputs onto the slots their players hold.
func (g *GameLoop) slotInputs() map[string]engine.Intent {
	raw := g.sessions.CollectInputs()
	inputs := make(map[string]engine.Intent, len(raw))
	for player, in := range raw {
		if slot, ok := g.lobby.AssignedSlot(player); ok {
			inputs[slot] = in
		}
	}
	return inputs
}

func (g *GameLoop) drainCommands() {
	g.cmdMu.Lock()
	pending := g.commands
	g.commands = nil
	g.cmdMu.Unlock()

	for _, cmd := range pending {
		g.apply(cmd)
	}
}

func (g *GameLoop) apply(cmd loopCommand) {
	switch c := cmd.(type) {
	case startMatchCmd:
		if g.engine.Running() {
			return
		}
		for _, p := range g.engine.Paddles() {
			g.syncSlot(p.PlayerID)
		}
		g.engine.Reset()
		ai.ResetEpisodes(g.engine)
		g.engine.Start()
		g.logger.Info("match started", "players", g.lobby.PlayerCount())
	case resetMatchCmd:
		g.engine.Reset()
		ai.ResetEpisodes(g.engine)
	case setControllerCmd:
		if err := g.engine.SetController(c.Slot, c.Controller); err != nil {
			g.logger.Warn("set controller", "slot", c.Slot, "err", err)
		}
	case syncSlotCmd:
		g.syncSlot(c.Slot)
	}
}

// syncSlot derives a paddle's controller from its occupant: humans play
// by input, lobby bots keep their level and empty slots get a bot only
// when filling is enabled.
func (g *GameLoop) syncSlot(slot string) {
	p, ok := g.engine.Paddle(slot)
	if !ok {
		return
	}
	occ, occupied := g.lobby.Occupant(slot)
	switch {
	case occupied && !occ.IsAI:
		p.SetController(nil)
	case occupied && occ.IsAI:
		if p.Controller() == nil {
			p.SetController(ai.New(occ.AILevel, g.cfg.AI))
		}
	case g.cfg.AI.FillEmptySlots:
		if p.Controller() == nil {
			p.SetController(ai.New(g.cfg.AI.Level, g.cfg.AI))
		}
	default:
		p.SetController(nil)
	}
}

// endMatch persists and announces the result, then resets the engine for
// the next match.
func (g *GameLoop) endMatch() {
	tally := g.engine.Tally(g.identity)
	g.logger.Info("match over",
		"left", tally.TeamLeftScore,
		"right", tally.TeamRightScore,
		"duration", tally.DurationSeconds,
	)

	if g.saver != nil {
		g.saves.Add(1)
		go func() {
			defer g.saves.Done()
			if err := g.saver.SaveMatchResult(tally); err != nil {
				g.logger.Error("save match result", "err", err)
			}
		}()
	}
	if g.publisher != nil {
		g.publisher.PublishMatchEnd(tally)
	}

	score := map[string]int{
		g.engine.Left().Name:  tally.TeamLeftScore,
		g.engine.Right().Name: tally.TeamRightScore,
	}
	g.sessions.Broadcast(protocol.NewMatchEnd(score, tally.DurationSeconds), "")

	g.engine.Reset()
	ai.ResetEpisodes(g.engine)
	snap := g.engine.Snapshot()
	g.snapshot.Store(&snap)
	g.running.Store(false)
	if g.onEnd != nil {
		g.onEnd(tally)
	}
}

// identity names a slot by its occupant's nickname or player id.
func (g *GameLoop) identity(slot string) string {
	occ, ok := g.lobby.Occupant(slot)
	if !ok || occ.IsAI {
		return ""
	}
	if occ.Nickname != "" {
		return occ.Nickname
	}
	return occ.PlayerID
}
