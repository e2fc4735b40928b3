// Package server streams a hive session to websocket clients and accepts
// their path drawings. Every mutation of the session happens under one mutex,
// on the tick loop or inside a client action.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r2"

	"beehive/backend/internal/agent"
	"beehive/backend/internal/config"
	"beehive/backend/internal/game"
	"beehive/backend/internal/hive"
	"beehive/backend/internal/journal"
	"beehive/backend/internal/monitoring"
)

// Server owns a session, its presentation hub and the optional journal.
type Server struct {
	cfg      *config.Config
	interval time.Duration

	mu       sync.Mutex
	hive     *hive.Hive
	session  *game.Session
	journal  *journal.Journal
	pilot    *agent.Agent
	space    agent.ActionSpace
	decision agent.Decision

	hub      *Hub
	live     bool // set once Run starts the hub
	done     chan struct{}
	upgrader websocket.Upgrader
}

// New builds and initializes the hive and session described by cfg. j may be
// nil to run without a journal.
func New(cfg *config.Config, j *journal.Journal) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	interval, err := cfg.Tick()
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s := &Server{
		cfg:      cfg,
		interval: interval,
		journal:  j,
		hub:      newHub(),
		done:     make(chan struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	if cfg.AgentSpace == "discrete" {
		s.space = agent.Discrete
	}
	s.decision = agent.HeuristicDecision{Space: s.space}

	if j != nil {
		if err := j.BeginSession(uuid.New().String()); err != nil {
			return nil, err
		}
	}
	h, err := hive.New(cfg.Hive, hive.WithRand(rng), hive.WithObserver(presenter{s}))
	if err != nil {
		return nil, err
	}
	s.hive = h
	h.Initialize()
	s.session = game.NewSession(cfg.Game, h, game.WithRand(rng), game.WithListener(presenter{s}))
	if cfg.AutoStart {
		s.session.Start()
	}
	monitoring.Logf("server: %s ready, seed %d", h, seed)
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)
	mux.HandleFunc("/debug/hive", s.handleHiveChart)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		s.mu.Lock()
		st := s.session.State()
		s.mu.Unlock()
		json.NewEncoder(w).Encode(struct {
			OK    bool  `json:"ok"`
			Tick  int64 `json:"tick"`
			Score int   `json:"score"`
		}{true, st.Tick, st.Score})
	})
	return mux
}

// Run drives the hub and the tick loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.mu.Lock()
	s.live = true
	s.mu.Unlock()
	go func() {
		s.hub.run(ctx)
		close(s.done)
	}()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step advances the game by one tick and broadcasts the summary.
func (s *Server) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Step(s.interval.Seconds())
	s.stepAgent()
	s.announce(EventTick, s.session.State())
}

// stepAgent feeds the pilot bee to the decision maker. A finished pilot is
// released and the oldest bee without a path takes over. When the game ends
// the pilot gets one last step so the decision maker sees the final reward.
func (s *Server) stepAgent() {
	if s.cfg.AgentSpace == "" {
		return
	}
	if !s.session.CanPlay() {
		if s.session.Over() && s.pilot != nil && !s.pilot.Done() {
			s.drivePilot()
		}
		return
	}
	if s.pilot == nil || s.pilot.Done() {
		s.pilot = nil
		for _, b := range s.session.Bees() {
			if b.Path() == nil {
				s.pilot = agent.New(s.session, b.ID, s.space)
				break
			}
		}
		if s.pilot == nil {
			return
		}
	}
	s.drivePilot()
}

func (s *Server) drivePilot() {
	state := s.pilot.CollectState()
	act := s.decision.Decide(state, s.pilot.Reward(), s.pilot.Done(), nil)
	reward, done := s.pilot.Step(act)
	s.announce(EventAgentStep, AgentStepEvent{
		Bee:    s.pilot.BeeID(),
		Space:  s.space.String(),
		State:  state,
		Reward: reward,
		Done:   done,
	})
	if done {
		s.pilot.OnDone()
	}
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Client{id: uuid.New().String(), conn: conn, send: make(chan []byte, 128)}
	if !s.join(c) {
		conn.Close()
		return
	}
	go c.writer()
	go s.reader(c)
}

// join registers c with the full state as its first message. s.mu stays held
// until the hub has taken the registration, so no later event can overtake
// the snapshot.
func (s *Server) join(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := encode(EventFullState, FullState{Hive: s.hive.Snapshot(), Game: s.session.State()})
	if err != nil {
		monitoring.Logf("server: encode full state: %v", err)
		return false
	}
	select {
	case s.hub.register <- message{client: c, data: b}:
		return true
	case <-s.done:
		return false
	}
}

// sendTo queues msg for c alone. The hub drops it if c has already left.
func (s *Server) sendTo(c *Client, msg []byte) bool {
	select {
	case s.hub.unicast <- message{client: c, data: msg}:
		return true
	case <-s.done:
		return false
	}
}

func (s *Server) reader(c *Client) {
	defer func() {
		select {
		case s.hub.unregister <- c:
		case <-s.done:
		}
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		if err := s.handleAction(env); err != nil {
			s.reply(c, err)
		}
	}
}

func (s *Server) reply(c *Client, err error) {
	b, encErr := encode(EventError, struct {
		Message string `json:"message"`
	}{err.Error()})
	if encErr != nil {
		return
	}
	s.sendTo(c, b)
}

var errUnknownAction = errors.New("unknown action")

func (s *Server) handleAction(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch env.Type {
	case ActionStart:
		s.session.Start()
	case ActionSpawnBee:
		if s.session.Over() {
			return game.ErrGameOver
		}
		s.session.SpawnBee()
	case ActionDrawPath:
		var p DrawPathPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("bad %s payload: %w", ActionDrawPath, err)
		}
		points := make([]r2.Vec, len(p.Points))
		for i, pt := range p.Points {
			points[i] = r2.Vec{X: pt[0], Y: pt[1]}
		}
		if _, err := s.session.DrawPath(p.Bee, points); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w %q", errUnknownAction, env.Type)
	}
	return nil
}
