// Package crowd steers agents in straight lines toward a target. Path
// finding around obstacles is left to whoever picks the targets.
package crowd

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Speed range of a freshly spawned agent, in world units per second.
const (
	MinSpeed = 4.0
	MaxSpeed = 5.0
)

// Agent moves toward a target at a fixed speed.
type Agent struct {
	Position r2.Vec
	Target   r2.Vec
	Speed    float64
}

// New places an agent at pos heading for target with a speed drawn uniformly
// from [MinSpeed, MaxSpeed).
func New(rng *rand.Rand, pos, target r2.Vec) *Agent {
	return &Agent{
		Position: pos,
		Target:   target,
		Speed:    MinSpeed + rng.Float64()*(MaxSpeed-MinSpeed),
	}
}

// SetDestination retargets the agent.
func (a *Agent) SetDestination(target r2.Vec) { a.Target = target }

// Remaining is the straight-line distance left to the target.
func (a *Agent) Remaining() float64 { return r2.Norm(r2.Sub(a.Target, a.Position)) }

// Arrived reports whether the agent sits on its target.
func (a *Agent) Arrived() bool { return a.Remaining() == 0 }

// Step advances the agent by dt seconds and returns the distance covered.
// It never overshoots the target.
func (a *Agent) Step(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	left := a.Remaining()
	move := a.Speed * dt
	if move >= left {
		a.Position = a.Target
		return left
	}
	a.Position = r2.Add(a.Position, r2.Scale(move/left, r2.Sub(a.Target, a.Position)))
	return move
}
