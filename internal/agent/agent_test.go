package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"beehive/backend/internal/game"
	"beehive/backend/internal/hive"
)

func newSession(t *testing.T, lives int) *game.Session {
	t.Helper()
	hc := hive.DefaultConfig()
	hc.Rows, hc.Columns, hc.StartRadius = 5, 5, 1
	hc.Stages = []hive.Stage{{GrowSize: 0, OpenCount: 1}}
	h, err := hive.New(hc, hive.WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	h.Initialize()
	h.Tick(true)

	cfg := game.DefaultConfig()
	cfg.Lives = lives
	cfg.SpawnInterval, cfg.BotInterval = 0, 0
	return game.NewSession(cfg, h, game.WithRand(rand.New(rand.NewSource(2))))
}

func TestCollectState(t *testing.T) {
	s := newSession(t, 3)
	b := s.SpawnBee()
	a := New(s, b.ID, Continuous)

	state := a.CollectState()
	center := s.Hive().Cell(2, 2).Center()
	pos := b.Position()
	assert.Equal(t, []float64{pos.X, pos.Y, 0, 3, center.X, center.Y}, state)
	assert.False(t, a.Done())
}

func TestCrowdPenalty(t *testing.T) {
	s := newSession(t, 3)
	b := s.SpawnBee()
	other := s.SpawnBee()
	require.NoError(t, s.Nudge(other.ID, r2.Sub(b.Position(), other.Position())))

	a := New(s, b.ID, Continuous)
	a.CollectState()
	reward, done := a.Step([]float64{0, 0})
	assert.False(t, done)
	assert.InDelta(t, 0.0, reward, 1e-9)

	require.NoError(t, s.Nudge(other.ID, r2.Vec{X: 10}))
	a.CollectState()
	reward, _ = a.Step(nil)
	assert.InDelta(t, 0.1, reward, 1e-9)
}

func TestContinuousActionIsClamped(t *testing.T) {
	s := newSession(t, 3)
	b := s.SpawnBee()
	start := b.Position()
	a := New(s, b.ID, Continuous)

	a.CollectState()
	a.Step([]float64{10, -10})
	got := r2.Sub(b.Position(), start)
	assert.InDelta(t, -0.2, got.X, 1e-9)
	assert.InDelta(t, 0.2, got.Y, 1e-9)
}

func TestDiscreteActions(t *testing.T) {
	s := newSession(t, 3)
	b := s.SpawnBee()
	a := New(s, b.ID, Discrete)

	start := b.Position()
	a.Step([]float64{3})
	assert.InDelta(t, start.Y+0.2, b.Position().Y, 1e-9)
	a.Step([]float64{0})
	assert.InDelta(t, start.X-0.2, b.Position().X, 1e-9)

	before := b.Position()
	a.Step([]float64{7})
	assert.Equal(t, before, b.Position())
}

func TestDoneWhenOutOfLives(t *testing.T) {
	s := newSession(t, 1)
	b := s.SpawnBee()
	a := New(s, b.ID, Continuous)

	s.Start()
	_, err := s.DrawPath(b.ID, []r2.Vec{{X: 50}})
	require.NoError(t, err)
	s.Step(100)
	require.Equal(t, 0, s.Lives())

	reward, done := a.Step(nil)
	assert.True(t, done)
	assert.Equal(t, -1.0, reward)
	assert.Nil(t, a.CollectState())
}

func TestLostBeeEndsEpisodeWithDeathReward(t *testing.T) {
	s := newSession(t, 3)
	b := s.SpawnBee()
	a := New(s, b.ID, Continuous)
	a.CollectState()

	s.Start()
	_, err := s.DrawPath(b.ID, []r2.Vec{{X: 50}})
	require.NoError(t, err)
	s.Step(100)
	require.Equal(t, 2, s.Lives())

	assert.Nil(t, a.CollectState())
	reward, done := a.Step(nil)
	assert.True(t, done)
	assert.Equal(t, -1.0, reward)
}

func TestUnknownBeeIsDone(t *testing.T) {
	a := New(newSession(t, 3), "nobody", Discrete)
	assert.True(t, a.Done())
	assert.Nil(t, a.CollectState())
	_, done := a.Step([]float64{1})
	assert.True(t, done)
}

func TestDoneWhenBeeLands(t *testing.T) {
	s := newSession(t, 3)
	b := s.SpawnBee()
	a := New(s, b.ID, Continuous)
	s.Start()
	_, err := s.DrawPath(b.ID, []r2.Vec{s.Hive().Cell(2, 2).Center()})
	require.NoError(t, err)
	s.Step(100)

	reward, done := a.Step(nil)
	assert.True(t, done)
	assert.InDelta(t, 0.1, reward, 1e-9)
	a.OnDone()
	assert.True(t, a.Done())
}

func TestHeuristicDecision(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0, 0}, HeuristicDecision{Space: Continuous}.Decide(nil, 0, false, nil))
	assert.Equal(t, []float64{1}, HeuristicDecision{Space: Discrete}.Decide(nil, 0, false, nil))
	assert.Empty(t, HeuristicDecision{}.MakeMemory(nil, 0, false, nil))
	assert.Equal(t, "discrete", Discrete.String())
}
