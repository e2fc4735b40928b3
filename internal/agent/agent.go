// Package agent exposes a bee to an external decision maker: it flattens the
// game into a state vector, shapes a scalar reward and applies actions. The
// learning itself happens elsewhere.
package agent

import (
	"gonum.org/v1/gonum/spatial/r2"

	"beehive/backend/internal/game"
)

// ActionSpace is the shape of the actions a decision maker emits.
type ActionSpace int

const (
	Continuous ActionSpace = iota
	Discrete
)

func (a ActionSpace) String() string {
	if a == Discrete {
		return "discrete"
	}
	return "continuous"
}

const (
	aliveReward   = 0.1
	crowdPenalty  = 0.1
	deathReward   = -1.0
	actionLimit   = 2.0 // continuous actions are clamped to ±actionLimit
	actionScale   = 0.1 // world units moved per unit of action
	discreteStep  = 0.2
	defaultRadius = 2.5
)

// discrete action index -> direction
var discreteMoves = [4]r2.Vec{
	{X: -1}, // left
	{X: 1},  // right
	{Y: -1}, // down
	{Y: 1},  // up
}

// Agent drives one bee of a session.
type Agent struct {
	session     *game.Session
	beeID       string
	bee         *game.Bee
	space       ActionSpace
	CrowdRadius float64

	reward  float64
	penalty float64
	done    bool
}

// New binds an agent to a bee. An unknown bee yields an agent that is
// already done.
func New(s *game.Session, beeID string, space ActionSpace) *Agent {
	a := &Agent{session: s, beeID: beeID, space: space, CrowdRadius: defaultRadius}
	if b, ok := s.Bee(beeID); ok {
		a.bee = b
	} else {
		a.done = true
	}
	return a
}

func (a *Agent) BeeID() string      { return a.beeID }
func (a *Agent) Space() ActionSpace { return a.space }
func (a *Agent) Reward() float64    { return a.reward }
func (a *Agent) Done() bool         { return a.done }

// CollectState returns x, y, score and lives followed by the x, y of every
// open cell. It also records the crowding penalty applied by the next Step:
// one crowdPenalty per other bee closer than CrowdRadius. A bee that has left
// play has no state; the next Step reports how it left.
func (a *Agent) CollectState() []float64 {
	if a.bee == nil || a.bee.Fate() != game.Flying {
		return nil
	}
	pos := a.bee.Position()
	state := []float64{pos.X, pos.Y, float64(a.session.Score()), float64(a.session.Lives())}
	for _, c := range a.session.Hive().OpenCells() {
		center := c.Center()
		state = append(state, center.X, center.Y)
	}

	a.penalty = 0
	for _, other := range a.session.Bees() {
		if other.ID == a.beeID {
			continue
		}
		if r2.Norm(r2.Sub(other.Position(), pos)) < a.CrowdRadius {
			a.penalty += crowdPenalty
		}
	}
	return state
}

// Step applies one action and returns the shaped reward and whether the
// episode ended. Continuous actions are (vertical, horizontal); discrete
// actions index left, right, down, up. Losing the bee or the last life ends
// the episode with deathReward; landing ends it with the living reward.
func (a *Agent) Step(act []float64) (float64, bool) {
	if a.done {
		return a.reward, true
	}
	if a.session.Lives() <= 0 || a.bee.Fate() == game.Lost {
		a.done = true
		a.reward = deathReward
		return a.reward, true
	}
	if a.bee.Fate() == game.Landed {
		a.done = true
		a.reward = aliveReward - a.penalty
		return a.reward, true
	}
	if delta, ok := a.move(act); ok {
		_ = a.session.Nudge(a.beeID, delta)
	}
	a.reward = aliveReward - a.penalty
	return a.reward, false
}

func (a *Agent) move(act []float64) (r2.Vec, bool) {
	switch a.space {
	case Discrete:
		if len(act) == 0 {
			return r2.Vec{}, false
		}
		i := int(act[0])
		if i < 0 || i >= len(discreteMoves) {
			return r2.Vec{}, false
		}
		return r2.Scale(discreteStep, discreteMoves[i]), true
	default:
		if len(act) < 2 {
			return r2.Vec{}, false
		}
		z, x := clamp(act[0]), clamp(act[1])
		return r2.Vec{X: x * actionScale, Y: z * actionScale}, true
	}
}

// OnDone releases the agent so the caller can bind a fresh bee.
func (a *Agent) OnDone() {
	a.done = true
	a.penalty = 0
}

func clamp(v float64) float64 {
	switch {
	case v > actionLimit:
		return actionLimit
	case v < -actionLimit:
		return -actionLimit
	}
	return v
}
