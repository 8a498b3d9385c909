// Package client is the player side of the wire protocol: a websocket
// client and the snapshot buffer that smooths rendering between server
// updates.
package client

import (
	"maps"
	"sync"
	"time"

	"github.com/vovakirdan/multipong/internal/core"
	"github.com/vovakirdan/multipong/internal/engine"
)

// DefaultBufferSize is the number of snapshots kept.
const DefaultBufferSize = 3

type timedSnapshot struct {
	at   time.Time
	snap engine.Snapshot
}

// SnapshotBuffer keeps the last few snapshots with their arrival time and
// interpolates positions between the two newest.
type SnapshotBuffer struct {
	mu     sync.Mutex
	size   int
	states []timedSnapshot
	now    func() time.Time
}

// NewSnapshotBuffer creates a buffer holding up to size snapshots.
func NewSnapshotBuffer(size int) *SnapshotBuffer {
	if size < 2 {
		size = DefaultBufferSize
	}
	return &SnapshotBuffer{size: size, now: time.Now}
}

// Add stores a snapshot stamped with the current time.
func (b *SnapshotBuffer) Add(s engine.Snapshot) {
	b.AddAt(s, b.now())
}

// AddAt stores a snapshot stamped with t. Snapshots are kept in the order
// they are added.
func (b *SnapshotBuffer) AddAt(s engine.Snapshot, t time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, timedSnapshot{at: t, snap: s})
	if len(b.states) > b.size {
		b.states = b.states[len(b.states)-b.size:]
	}
}

// Latest returns the newest snapshot.
func (b *SnapshotBuffer) Latest() (engine.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.states) == 0 {
		return engine.Snapshot{}, false
	}
	return b.states[len(b.states)-1].snap, true
}

// Interpolated returns the state renderDelay behind now.
func (b *SnapshotBuffer) Interpolated(renderDelay time.Duration) (engine.Snapshot, bool) {
	return b.InterpolatedAt(b.now(), renderDelay)
}

// InterpolatedAt blends the two newest snapshots for the time
// now-renderDelay. Ball and paddle positions are interpolated; scores,
// goal zones and the rest come from the newer snapshot. With fewer than
// two snapshots it returns the latest one.
func (b *SnapshotBuffer) InterpolatedAt(now time.Time, renderDelay time.Duration) (engine.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.states)
	switch n {
	case 0:
		return engine.Snapshot{}, false
	case 1:
		return b.states[0].snap, true
	}

	older, newer := b.states[n-2], b.states[n-1]
	span := newer.at.Sub(older.at)
	if span <= 0 {
		return newer.snap, true
	}
	alpha := core.ClampF(float64(now.Add(-renderDelay).Sub(older.at))/float64(span), 0, 1)
	return blend(older.snap, newer.snap, alpha), true
}

// Len returns the number of buffered snapshots.
func (b *SnapshotBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.states)
}

// Clear drops every snapshot.
func (b *SnapshotBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = nil
}

func blend(s1, s2 engine.Snapshot, alpha float64) engine.Snapshot {
	out := s2
	out.Score = maps.Clone(s2.Score)
	out.Ball.X = lerp(s1.Ball.X, s2.Ball.X, alpha)
	out.Ball.Y = lerp(s1.Ball.Y, s2.Ball.Y, alpha)
	out.TeamLeft = blendTeam(s1.TeamLeft, s2.TeamLeft, alpha)
	out.TeamRight = blendTeam(s1.TeamRight, s2.TeamRight, alpha)
	return out
}

// blendTeam matches paddles by player id; paddles missing from the older
// team are taken as is.
func blendTeam(t1, t2 engine.TeamState, alpha float64) engine.TeamState {
	out := t2
	out.Paddles = make([]engine.PaddleState, len(t2.Paddles))
	for i, p2 := range t2.Paddles {
		p := p2
		if p.Zone != nil {
			z := *p.Zone
			p.Zone = &z
		}
		if p1, ok := t1.Paddle(p2.PlayerID); ok {
			p.X = lerp(p1.X, p2.X, alpha)
			p.Y = lerp(p1.Y, p2.Y, alpha)
		}
		out.Paddles[i] = p
	}
	return out
}

// lerp interpolates and keeps the result between a and b despite rounding.
func lerp(a, b, t float64) float64 {
	return core.ClampF(core.Lerp(a, b, t), min(a, b), max(a, b))
}
