package multiplayer

import (
	"sync"
	"testing"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/core"
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/protocol"
)

func loopConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Arena.MatchSeconds = 0
	cfg.Server.MinPlayers = 1
	cfg.Server.CountdownSeconds = 0
	return cfg
}

type recordingSaver struct {
	mu      sync.Mutex
	tallies []engine.Tally
}

func (s *recordingSaver) SaveMatchResult(t engine.Tally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies = append(s.tallies, t)
	return nil
}

type recordingPublisher struct {
	goals []engine.Event
	ends  []engine.Tally
}

func (p *recordingPublisher) PublishGoal(ev engine.Event, _ map[string]int) {
	p.goals = append(p.goals, ev)
}

func (p *recordingPublisher) PublishMatchEnd(t engine.Tally) {
	p.ends = append(p.ends, t)
}

func mustConnect(t *testing.T, c *Coordinator, id, slot string) *Session {
	t.Helper()
	s, err := c.Connect(id, slot)
	if err != nil {
		t.Fatalf("Connect(%s, %s) error = %v", id, slot, err)
	}
	return s
}

func TestStepMapsInputsToSlots(t *testing.T) {
	c := NewCoordinator(loopConfig(), nil)
	s := mustConnect(t, c, "p1", "B2")
	loop := c.Loop()

	loop.StartMatch()
	loop.Step()
	before, _ := loop.Snapshot().Paddle("B2")
	idleBefore, _ := loop.Snapshot().Paddle("A1")

	s.SetInput(core.Intent{Down: true})
	loop.Step()
	after, _ := loop.Snapshot().Paddle("B2")
	idleAfter, _ := loop.Snapshot().Paddle("A1")

	if after.Y <= before.Y {
		t.Errorf("B2 y = %v after down input, expected more than %v", after.Y, before.Y)
	}
	if idleAfter.Y != idleBefore.Y {
		t.Errorf("unoccupied A1 moved from %v to %v", idleBefore.Y, idleAfter.Y)
	}
}

func TestStepBroadcastsEveryN(t *testing.T) {
	cfg := loopConfig()
	cfg.Server.BroadcastEvery = 3
	c := NewCoordinator(cfg, nil)
	s := mustConnect(t, c, "p1", "auto")
	drain(t, s)

	for range 6 {
		c.Loop().Step()
	}

	if got := countType[protocol.Snapshot](drain(t, s)); got != 2 {
		t.Errorf("snapshots = %d, expected 2", got)
	}
}

func TestStepRunsOnlyAfterStart(t *testing.T) {
	c := NewCoordinator(loopConfig(), nil)
	loop := c.Loop()

	loop.Step()
	if loop.Running() || loop.Snapshot().Tick != 0 {
		t.Fatalf("loop running before StartMatch: tick %d", loop.Snapshot().Tick)
	}

	loop.StartMatch()
	loop.Step()
	if !loop.Running() || loop.Snapshot().Tick != 1 {
		t.Errorf("after StartMatch: running %v tick %d, expected true 1", loop.Running(), loop.Snapshot().Tick)
	}

	loop.ResetMatch()
	loop.Step()
	if loop.Running() || loop.Snapshot().Tick != 0 {
		t.Errorf("after ResetMatch: running %v tick %d, expected false 0", loop.Running(), loop.Snapshot().Tick)
	}
}

func TestGoalIsPublished(t *testing.T) {
	c := NewCoordinator(loopConfig(), nil)
	loop := c.Loop()
	pub := &recordingPublisher{}
	loop.SetPublisher(pub)

	loop.StartMatch()
	loop.Step()
	loop.engine.SetBall(engine.Ball{X: 1205, Y: 400, VX: 5, Radius: 10})
	loop.Step()

	if len(pub.goals) != 1 || pub.goals[0].Team != "A" {
		t.Errorf("published goals = %+v, expected one for A", pub.goals)
	}
	if score := loop.Snapshot().Score["A"]; score != 1 {
		t.Errorf("snapshot score A = %d, expected 1", score)
	}
}

func TestMatchEndSavesAndResets(t *testing.T) {
	cfg := loopConfig()
	cfg.Arena.MatchSeconds = 0.05
	c := NewCoordinator(cfg, nil)
	s := mustConnect(t, c, "p1", "A1")
	c.Lobby().Join("p1", "alice")
	c.Lobby().SetReady("p1", true)
	if err := c.Lobby().SetAI("B1", config.LevelStatic); err != nil {
		t.Fatal(err)
	}

	loop := c.Loop()
	saver := &recordingSaver{}
	pub := &recordingPublisher{}
	loop.SetResultSaver(saver)
	loop.SetPublisher(pub)

	loop.StartMatch()
	ended := false
	for range 10 {
		for _, ev := range loop.Step() {
			if ev.Kind == engine.EventMatchOver {
				ended = true
			}
		}
		if ended {
			break
		}
	}
	if !ended {
		t.Fatal("match did not end")
	}
	loop.Stop()

	if len(saver.tallies) != 1 {
		t.Fatalf("saved tallies = %d, expected 1", len(saver.tallies))
	}
	players := saver.tallies[0].Players
	if len(players) != 1 {
		t.Fatalf("tally players = %+v, expected only alice", players)
	}
	if first := players[0]; first.PlayerID != "alice" {
		t.Errorf("tally player = %q, expected nickname alice", first.PlayerID)
	}
	if len(pub.ends) != 1 {
		t.Errorf("published match ends = %d, expected 1", len(pub.ends))
	}
	if loop.Running() || loop.Snapshot().Tick != 0 {
		t.Errorf("after match end: running %v tick %d, expected reset", loop.Running(), loop.Snapshot().Tick)
	}
	if countType[protocol.MatchEnd](drain(t, s)) != 1 {
		t.Error("match_end not broadcast")
	}
	if occ, _ := c.Lobby().Occupant("A1"); occ.Ready {
		t.Error("player still ready after match end")
	}
}

func TestFillEmptySlotsAndHandoff(t *testing.T) {
	cfg := loopConfig()
	cfg.AI.FillEmptySlots = true
	cfg.AI.Level = config.LevelStatic
	c := NewCoordinator(cfg, nil)
	loop := c.Loop()

	mustConnect(t, c, "p1", "A1")
	loop.StartMatch()
	loop.Step()

	isAI := func(slot string) bool {
		p, ok := loop.Snapshot().Paddle(slot)
		if !ok {
			t.Fatalf("paddle %s missing", slot)
		}
		return p.IsAI
	}
	if isAI("A1") {
		t.Error("human slot A1 has a bot")
	}
	for _, slot := range []string{"A2", "A3", "B1", "B2", "B3"} {
		if !isAI(slot) {
			t.Errorf("empty slot %s has no bot", slot)
		}
	}

	p2 := mustConnect(t, c, "p2", "B1")
	loop.Step()
	if isAI("B1") {
		t.Error("B1 still a bot after a human joined")
	}

	c.Disconnect(p2)
	loop.Step()
	if !isAI("B1") {
		t.Error("B1 not refilled after the human left")
	}
}
