// Package game runs a play session around a hive: it spawns bees, moves them
// along their drawn paths, scores landings, tracks lives and decides when the
// hive may advance.
package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"beehive/backend/internal/crowd"
	"beehive/backend/internal/hive"
	"beehive/backend/internal/monitoring"
)

var (
	ErrInvalidConfig = errors.New("invalid game config")
	ErrUnknownBee    = errors.New("unknown bee")
	ErrEmptyPath     = errors.New("path has no points")
	ErrGameOver      = errors.New("game is over")
)

// Config tunes a session.
type Config struct {
	Lives          int     `json:"lives"`
	SpawnInterval  int     `json:"spawn_interval"` // ticks between spawns
	MaxBees        int     `json:"max_bees"`
	SpawnPadding   float64 `json:"spawn_padding"` // distance outside the hive bees appear at
	DwellTicks     int     `json:"dwell_ticks"`   // ticks a full cell stays occupied
	BotInterval    int     `json:"bot_interval"`  // 0 disables the planner
	RankThresholds []int   `json:"rank_thresholds"`
}

// DefaultConfig returns the stock session settings.
func DefaultConfig() Config {
	return Config{
		Lives:          3,
		SpawnInterval:  4,
		MaxBees:        8,
		SpawnPadding:   2,
		DwellTicks:     10,
		BotInterval:    3,
		RankThresholds: []int{5, 15, 30, 60},
	}
}

// Validate reports the first configuration problem, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Lives < 1 {
		return fmt.Errorf("%w: lives must be at least 1, got %d", ErrInvalidConfig, c.Lives)
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"spawn_interval", c.SpawnInterval},
		{"max_bees", c.MaxBees},
		{"dwell_ticks", c.DwellTicks},
		{"bot_interval", c.BotInterval},
	} {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, f.name, f.value)
		}
	}
	if c.SpawnPadding < 0 {
		return fmt.Errorf("%w: spawn_padding must not be negative, got %g", ErrInvalidConfig, c.SpawnPadding)
	}
	if !sort.IntsAreSorted(c.RankThresholds) {
		return fmt.Errorf("%w: rank_thresholds must be ascending, got %v", ErrInvalidConfig, c.RankThresholds)
	}
	return nil
}

// Listener receives gameplay events. Callbacks run inside Step or the
// mutating call that caused them.
type Listener interface {
	BeeSpawned(b *Bee)
	BeeArrived(b *Bee, c *hive.Cell, filled bool)
	BeeLost(b *Bee)
	GameOver(score int)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) BeeSpawned(*Bee)                   {}
func (NopListener) BeeArrived(*Bee, *hive.Cell, bool) {}
func (NopListener) BeeLost(*Bee)                      {}
func (NopListener) GameOver(int)                      {}

// Session is the game-state authority. Like the hive it is not safe for
// concurrent use.
type Session struct {
	cfg      Config
	hive     *hive.Hive
	rng      *rand.Rand
	listener Listener

	tick    int64
	lives   int
	score   int
	started bool
	over    bool

	bees     map[string]*Bee
	occupied map[*hive.Cell]int64 // tick each cell filled up
}

// Option customizes a Session.
type Option func(*Session)

// WithRand sets the random source for spawns and the planner.
func WithRand(rng *rand.Rand) Option { return func(s *Session) { s.rng = rng } }

// WithListener sets the gameplay event listener.
func WithListener(l Listener) Option { return func(s *Session) { s.listener = l } }

// NewSession wraps an initialized hive.
func NewSession(cfg Config, h *hive.Hive, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		hive:     h,
		listener: NopListener{},
		lives:    cfg.Lives,
		bees:     map[string]*Bee{},
		occupied: map[*hive.Cell]int64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return s
}

func (s *Session) Hive() *hive.Hive { return s.hive }
func (s *Session) Tick() int64      { return s.tick }
func (s *Session) Lives() int       { return s.lives }
func (s *Session) Score() int       { return s.score }
func (s *Session) Over() bool       { return s.over }

// Start lets play begin.
func (s *Session) Start() { s.started = true }

// CanPlay gates the hive stage machine: true once started and until game over.
func (s *Session) CanPlay() bool { return s.started && !s.over }

// Rank counts how many rank thresholds the score has reached.
func (s *Session) Rank() int { return Rank(s.cfg.RankThresholds, s.score) }

// Rank returns the number of ascending thresholds at or below score.
func Rank(thresholds []int, score int) int {
	return sort.Search(len(thresholds), func(i int) bool { return thresholds[i] > score })
}

// Bee returns a live bee by id.
func (s *Session) Bee(id string) (*Bee, bool) {
	b, ok := s.bees[id]
	return b, ok
}

// Bees returns the live bees ordered by spawn tick then id.
func (s *Session) Bees() []*Bee {
	out := make([]*Bee, 0, len(s.bees))
	for _, b := range s.bees {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SpawnedAt != out[j].SpawnedAt {
			return out[i].SpawnedAt < out[j].SpawnedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SpawnBee places a bee on a ring just outside the hive.
func (s *Session) SpawnBee() *Bee {
	cfg := s.hive.Config()
	radius := math.Max(float64(cfg.Rows), float64(cfg.Columns))*cfg.CellSize*0.5 + s.cfg.SpawnPadding
	angle := s.rng.Float64() * 2 * math.Pi
	pos := r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	b := &Bee{
		ID:        uuid.New().String(),
		SpawnedAt: s.tick,
		agent:     crowd.New(s.rng, pos, pos),
	}
	s.bees[b.ID] = b
	s.listener.BeeSpawned(b)
	return b
}

// DrawPath gives a bee a new flight path and snaps its end to an open cell.
// The returned cell is nil when the endpoint is not near any open cell.
func (s *Session) DrawPath(beeID string, points []r2.Vec) (*hive.Cell, error) {
	if s.over {
		return nil, ErrGameOver
	}
	b, ok := s.bees[beeID]
	if !ok {
		return nil, ErrUnknownBee
	}
	if len(points) == 0 {
		return nil, ErrEmptyPath
	}
	if b.path != nil {
		s.hive.Unbind(b.path)
	}
	b.path = hive.NewPath(uuid.New().String(), points...)
	b.waypoint = 0
	b.agent.SetDestination(points[0])
	return s.hive.SnapToNearest(b.path), nil
}

// Nudge shifts a bee directly, outside of its path.
func (s *Session) Nudge(beeID string, delta r2.Vec) error {
	b, ok := s.bees[beeID]
	if !ok {
		return ErrUnknownBee
	}
	b.agent.Position = r2.Add(b.agent.Position, delta)
	if b.path == nil {
		b.agent.SetDestination(b.agent.Position)
	}
	return nil
}

// OnBeeArrived scores one landing.
func (s *Session) OnBeeArrived() { s.score++ }

// Step advances the session by one tick of dt seconds.
func (s *Session) Step(dt float64) {
	if !s.CanPlay() {
		return
	}
	s.tick++

	if s.cfg.SpawnInterval > 0 && s.tick%int64(s.cfg.SpawnInterval) == 0 && len(s.bees) < s.cfg.MaxBees {
		s.SpawnBee()
	}
	if s.cfg.BotInterval > 0 && s.tick%int64(s.cfg.BotInterval) == 0 {
		s.plan()
	}
	for _, b := range s.Bees() {
		if b.fly(dt) {
			s.land(b)
		}
		if s.over {
			return
		}
	}
	s.vacate()
	s.hive.Tick(s.CanPlay())
}

func (s *Session) land(b *Bee) {
	delete(s.bees, b.ID)
	target := b.path.Target()
	if target == nil {
		s.loseLife(b)
		return
	}
	// a landed bee holds no claim on the cell
	s.hive.Unbind(b.path)
	filled, err := s.hive.Enter(target)
	if err != nil {
		monitoring.Logf("game: bee %s could not enter %d,%d: %v", b.ID, target.Row(), target.Column(), err)
		s.loseLife(b)
		return
	}
	if filled {
		s.occupied[target] = s.tick
	}
	b.fate = Landed
	s.OnBeeArrived()
	s.listener.BeeArrived(b, target, filled)
}

func (s *Session) loseLife(b *Bee) {
	b.fate = Lost
	s.lives--
	s.listener.BeeLost(b)
	if s.lives <= 0 {
		s.over = true
		monitoring.Logf("game: over at tick %d with score %d", s.tick, s.score)
		s.listener.GameOver(s.score)
	}
}

func (s *Session) vacate() {
	for c, at := range s.occupied {
		if s.tick-at < int64(s.cfg.DwellTicks) {
			continue
		}
		delete(s.occupied, c)
		if err := s.hive.Vacate(c); err != nil {
			monitoring.Logf("game: vacate %d,%d: %v", c.Row(), c.Column(), err)
		}
	}
}

// State is the serializable session summary.
type State struct {
	Tick  int64      `json:"tick"`
	Lives int        `json:"lives"`
	Score int        `json:"score"`
	Rank  int        `json:"rank"`
	Over  bool       `json:"over"`
	Bees  []BeeState `json:"bees"`
}

// State snapshots the session.
func (s *Session) State() State {
	st := State{Tick: s.tick, Lives: s.lives, Score: s.score, Rank: s.Rank(), Over: s.over}
	for _, b := range s.Bees() {
		st.Bees = append(st.Bees, b.State())
	}
	return st
}
