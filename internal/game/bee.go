package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"beehive/backend/internal/crowd"
	"beehive/backend/internal/hive"
)

// Fate is how a bee left play, Flying while it is still around.
type Fate int

const (
	Flying Fate = iota
	Landed
	Lost
)

// Bee flies along its drawn path, one waypoint at a time.
type Bee struct {
	ID        string
	SpawnedAt int64

	agent    *crowd.Agent
	path     *hive.Path
	waypoint int
	fate     Fate
}

// Fate reports whether the bee is still flying, landed in a cell or was lost.
func (b *Bee) Fate() Fate { return b.fate }

// Position is where the bee is now.
func (b *Bee) Position() r2.Vec { return b.agent.Position }

// Path is the bee's current flight path, nil before one is drawn.
func (b *Bee) Path() *hive.Path { return b.path }

// fly moves the bee for dt seconds and reports whether it reached the end of
// its path. Bees without a path hover in place.
func (b *Bee) fly(dt float64) bool {
	if b.path == nil || b.path.Len() == 0 {
		return false
	}
	budget := b.agent.Speed * dt
	for budget > 0 {
		budget -= b.agent.Step(budget / b.agent.Speed)
		if !b.agent.Arrived() {
			return false
		}
		if b.waypoint >= b.path.Len()-1 {
			return true
		}
		b.waypoint++
		b.agent.SetDestination(b.path.Point(b.waypoint))
	}
	return b.agent.Arrived() && b.waypoint >= b.path.Len()-1
}

// BeeState is the serializable view of a bee.
type BeeState struct {
	ID     string       `json:"id"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	PathID string       `json:"path_id,omitempty"`
	Path   [][2]float64 `json:"path,omitempty"`
	Target *[2]int      `json:"target,omitempty"`
}

// State snapshots the bee.
func (b *Bee) State() BeeState {
	st := BeeState{ID: b.ID, X: b.agent.Position.X, Y: b.agent.Position.Y}
	if b.path != nil {
		st.PathID = b.path.ID
		for _, pt := range b.path.Points() {
			st.Path = append(st.Path, [2]float64{pt.X, pt.Y})
		}
		if c := b.path.Target(); c != nil {
			st.Target = &[2]int{c.Row(), c.Column()}
		}
	}
	return st
}
