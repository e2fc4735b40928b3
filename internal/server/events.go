package server

import (
	"encoding/json"

	"beehive/backend/internal/game"
	"beehive/backend/internal/hive"
	"beehive/backend/internal/journal"
	"beehive/backend/internal/monitoring"
)

// Event names sent to clients.
const (
	EventFullState     = "full_state"
	EventCellRevealed  = "cell_revealed"
	EventCellOpened    = "cell_opened"
	EventCellClosed    = "cell_closed"
	EventCellVacated   = "cell_vacated"
	EventHiveGrew      = "hive_grew"
	EventStageAdvanced = "stage_advanced"
	EventPathBound     = "path_bound"
	EventPathDetached  = "path_detached"
	EventBeeSpawned    = "bee_spawned"
	EventBeeArrived    = "bee_arrived"
	EventBeeLost       = "bee_lost"
	EventGameOver      = "game_over"
	EventTick          = "tick"
	EventAgentStep     = "agent_step"
	EventError         = "error"
)

// Client -> server actions.
const (
	ActionDrawPath = "draw_path"
	ActionSpawnBee = "spawn_bee"
	ActionStart    = "start"
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type DrawPathPayload struct {
	Bee    string       `json:"bee"`
	Points [][2]float64 `json:"points"`
}

type FullState struct {
	Hive hive.Snapshot `json:"hive"`
	Game game.State    `json:"game"`
}

type HiveGrewEvent struct {
	Grown int `json:"grown"`
	Total int `json:"total"`
}

type StageEvent struct {
	Index int        `json:"index"`
	Stage hive.Stage `json:"stage"`
}

type PathEvent struct {
	Path   string `json:"path"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

type BeeArrivedEvent struct {
	Bee    string `json:"bee"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Filled bool   `json:"filled"`
}

type AgentStepEvent struct {
	Bee    string    `json:"bee"`
	Space  string    `json:"space"`
	State  []float64 `json:"state"`
	Reward float64   `json:"reward"`
	Done   bool      `json:"done"`
}

func encode(t string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Payload: payload})
}

// announce broadcasts an event to connected clients. Callers hold s.mu.
// Nothing is sent before Run starts the hub, since no client can be connected.
func (s *Server) announce(t string, data interface{}) {
	if !s.live {
		return
	}
	b, err := encode(t, data)
	if err != nil {
		monitoring.Logf("server: encode %s: %v", t, err)
		return
	}
	select {
	case s.hub.broadcast <- b:
	default:
		monitoring.Logf("server: broadcast queue full, dropped %s", t)
	}
}

func (s *Server) record(kind string, c *hive.Cell, detail interface{}) {
	if s.journal == nil {
		return
	}
	ev := journal.Event{Tick: s.tickCount(), Kind: kind}
	if c != nil {
		ev.HasCell, ev.Row, ev.Column = true, c.Row(), c.Column()
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			ev.Detail = string(b)
		}
	}
	if err := s.journal.Record(ev); err != nil {
		monitoring.Logf("server: journal: %v", err)
	}
}

// tickCount is the session tick, or 0 while the session is being built.
func (s *Server) tickCount() int64 {
	if s.session == nil {
		return 0
	}
	return s.session.Tick()
}

// presenter turns hive and gameplay callbacks into client events.
type presenter struct{ s *Server }

var (
	_ hive.Observer = presenter{}
	_ game.Listener = presenter{}
)

func (p presenter) cell(kind string, c *hive.Cell) {
	p.s.announce(kind, c.Info())
	p.s.record(kind, c, nil)
}

func (p presenter) CellRevealed(c *hive.Cell) { p.cell(EventCellRevealed, c) }
func (p presenter) CellOpened(c *hive.Cell)   { p.cell(EventCellOpened, c) }
func (p presenter) CellClosed(c *hive.Cell)   { p.cell(EventCellClosed, c) }
func (p presenter) CellVacated(c *hive.Cell)  { p.cell(EventCellVacated, c) }

func (p presenter) HiveGrew(n int) {
	ev := HiveGrewEvent{Grown: n}
	if p.s.hive != nil {
		ev.Total = p.s.hive.RevealedCount()
	}
	p.s.announce(EventHiveGrew, ev)
	p.s.record(EventHiveGrew, nil, ev)
}

func (p presenter) StageAdvanced(i int, st hive.Stage) {
	ev := StageEvent{Index: i, Stage: st}
	p.s.announce(EventStageAdvanced, ev)
	p.s.record(EventStageAdvanced, nil, ev)
}

func (p presenter) PathBound(path *hive.Path, c *hive.Cell) {
	p.s.announce(EventPathBound, PathEvent{Path: path.ID, Row: c.Row(), Column: c.Column()})
}

func (p presenter) PathDetached(path *hive.Path, c *hive.Cell) {
	p.s.announce(EventPathDetached, PathEvent{Path: path.ID, Row: c.Row(), Column: c.Column()})
}

func (p presenter) BeeSpawned(b *game.Bee) {
	p.s.announce(EventBeeSpawned, b.State())
}

func (p presenter) BeeArrived(b *game.Bee, c *hive.Cell, filled bool) {
	ev := BeeArrivedEvent{Bee: b.ID, Row: c.Row(), Column: c.Column(), Filled: filled}
	p.s.announce(EventBeeArrived, ev)
	p.s.record(EventBeeArrived, c, ev)
}

func (p presenter) BeeLost(b *game.Bee) {
	p.s.announce(EventBeeLost, b.State())
	p.s.record(EventBeeLost, nil, b.State())
}

func (p presenter) GameOver(score int) {
	p.s.announce(EventGameOver, struct {
		Score int `json:"score"`
	}{score})
	if p.s.journal != nil {
		if err := p.s.journal.EndSession(score, p.s.tickCount()); err != nil {
			monitoring.Logf("server: journal: %v", err)
		}
	}
}
