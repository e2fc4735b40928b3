// Package hive implements the honeycomb grid: outward growth from the center,
// opening of target cells, the stage machine that paces both, and snapping of
// flight paths onto open cells.
//
// A Hive is not safe for concurrent use. Callers drive it from a single tick
// loop and serialize any outside access.
package hive

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"beehive/backend/internal/monitoring"
)

// ErrNotOpen is returned when an operation needs an open cell.
var ErrNotOpen = errors.New("cell is not open")

// ErrNotOccupied is returned by Vacate on a cell that holds no bees.
var ErrNotOccupied = errors.New("cell is not occupied")

// Hive owns the grid and the growth stage machine.
type Hive struct {
	cfg      Config
	cells    [][]*Cell
	revealed int
	open     []*Cell
	stage    int // -1 until the first advancement
	rng      *rand.Rand
	observer Observer
}

// Option customizes a Hive at construction.
type Option func(*Hive)

// WithRand sets the random source used for every pick.
func WithRand(rng *rand.Rand) Option { return func(h *Hive) { h.rng = rng } }

// WithObserver sets the presentation observer.
func WithObserver(o Observer) Option { return func(h *Hive) { h.observer = o } }

// New validates cfg and allocates every cell hidden. Call Initialize to reveal
// the starting area.
func New(cfg Config, opts ...Option) (*Hive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Hive{cfg: cfg, stage: -1, observer: NopObserver{}}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	spacingX := cfg.CellSize
	spacingY := cfg.CellSize * 0.75
	h.cells = make([][]*Cell, cfg.Rows)
	for row := 0; row < cfg.Rows; row++ {
		offset := 0.0
		if row%2 == 0 {
			offset = 0.5
		}
		h.cells[row] = make([]*Cell, cfg.Columns)
		for col := 0; col < cfg.Columns; col++ {
			h.cells[row][col] = &Cell{
				row:    row,
				column: col,
				center: r2.Vec{
					X: (float64(cfg.Columns)*-0.5 + float64(col) + offset) * spacingX,
					Y: (float64(cfg.Rows)*-0.5 + float64(row)) * spacingY,
				},
			}
		}
	}
	return h, nil
}

// Initialize reveals every cell closer than StartRadius hex steps to the
// center cell. It is a no-op once anything has been revealed.
func (h *Hive) Initialize() {
	if h.revealed > 0 {
		return
	}
	cr, cc := h.cfg.Rows/2, h.cfg.Columns/2
	for _, row := range h.cells {
		for _, c := range row {
			if hexDistance(c.row, c.column, cr, cc) < h.cfg.StartRadius {
				h.reveal(c)
			}
		}
	}
	monitoring.Logf("hive: initialized %dx%d grid, %d cells revealed", h.cfg.Rows, h.cfg.Columns, h.revealed)
}

// Config returns the configuration the hive was built with.
func (h *Hive) Config() Config { return h.cfg }

func (h *Hive) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < h.cfg.Rows && col < h.cfg.Columns
}

// Cell returns the cell at (row, col), nil when out of bounds.
func (h *Hive) Cell(row, col int) *Cell {
	if !h.inBounds(row, col) {
		return nil
	}
	return h.cells[row][col]
}

// Cells returns every cell in row-major order.
func (h *Hive) Cells() []*Cell {
	out := make([]*Cell, 0, h.cfg.Rows*h.cfg.Columns)
	for _, row := range h.cells {
		out = append(out, row...)
	}
	return out
}

// RevealedCount is the number of cells that are no longer hidden.
func (h *Hive) RevealedCount() int { return h.revealed }

// OpenCells returns the open cells in the order they were opened.
func (h *Hive) OpenCells() []*Cell {
	out := make([]*Cell, len(h.open))
	copy(out, h.open)
	return out
}

// Stage returns the current stage index, -1 before the first advancement.
func (h *Hive) Stage() int { return h.stage }

func (h *Hive) reveal(c *Cell) {
	c.state = Revealed
	h.revealed++
	h.observer.CellRevealed(c)
}

// Grow reveals up to n hidden cells that touch the revealed area, each picked
// uniformly from the current frontier. It returns how many were revealed.
func (h *Hive) Grow(n int) int {
	if limit := h.cfg.Rows*h.cfg.Columns - h.revealed; n > limit {
		n = limit
	}
	grown := 0
	for grown < n {
		frontier := h.frontier()
		if len(frontier) == 0 {
			monitoring.Logf("hive: no hidden cell borders the hive, grew %d of %d", grown, n)
			break
		}
		h.reveal(frontier[h.rng.Intn(len(frontier))])
		grown++
	}
	if grown > 0 {
		h.observer.HiveGrew(grown)
	}
	return grown
}

func (h *Hive) frontier() []*Cell {
	var out []*Cell
	for _, row := range h.cells {
		for _, c := range row {
			if c.state == Hidden && h.hasRevealedNeighbor(c.row, c.column) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Open opens up to n revealed cells picked uniformly among those that are
// neither open nor occupied. It returns how many were opened.
func (h *Hive) Open(n int) int {
	opened := 0
	for opened < n {
		var candidates []*Cell
		for _, row := range h.cells {
			for _, c := range row {
				if c.state == Revealed {
					candidates = append(candidates, c)
				}
			}
		}
		if len(candidates) == 0 {
			monitoring.Logf("hive: no revealed cell left to open, opened %d of %d", opened, n)
			break
		}
		c := candidates[h.rng.Intn(len(candidates))]
		c.state = Open
		c.capacity = h.cfg.BeesPerCell
		c.occupants = 0
		h.open = append(h.open, c)
		h.observer.CellOpened(c)
		opened++
	}
	return opened
}

// Close returns an open cell to the revealed state and detaches every path
// bound to it.
func (h *Hive) Close(c *Cell) error {
	if c == nil || c.state != Open {
		return ErrNotOpen
	}
	h.close(c, Revealed)
	return nil
}

func (h *Hive) close(c *Cell, next CellState) {
	for i, o := range h.open {
		if o == c {
			h.open = append(h.open[:i], h.open[i+1:]...)
			break
		}
	}
	c.state = next
	paths := c.paths
	c.paths = nil
	for _, p := range paths {
		p.target = nil
		h.observer.PathDetached(p, c)
	}
	h.observer.CellClosed(c)
}

// Enter lands one bee in an open cell. When the cell reaches capacity it
// becomes occupied and closes; filled reports that transition.
func (h *Hive) Enter(c *Cell) (filled bool, err error) {
	if c == nil || c.state != Open {
		return false, ErrNotOpen
	}
	c.occupants++
	if c.occupants < c.capacity {
		return false, nil
	}
	h.close(c, Occupied)
	return true, nil
}

// Vacate empties an occupied cell so it can be opened again.
func (h *Hive) Vacate(c *Cell) error {
	if c == nil || c.state != Occupied {
		return ErrNotOccupied
	}
	c.state = Revealed
	c.occupants = 0
	c.capacity = 0
	h.observer.CellVacated(c)
	return nil
}

// Tick runs one step of the stage machine. Nothing happens unless canAdvance
// is set; otherwise, once every open cell has closed, the hive moves to the
// next stage (sticking at the last), grows and opens new cells. It reports
// whether an advancement happened.
//
// In the last stage a hive with nothing left to grow or open stays put until
// a cell is vacated.
func (h *Hive) Tick(canAdvance bool) bool {
	if !canAdvance || len(h.open) > 0 {
		return false
	}
	if h.stage < len(h.cfg.Stages)-1 {
		h.stage++
	} else if h.stalled(h.cfg.Stages[h.stage]) {
		return false
	}
	s := h.cfg.Stages[h.stage]
	h.observer.StageAdvanced(h.stage, s)
	h.Grow(s.GrowSize)
	h.Open(s.OpenCount)
	return true
}

// stalled reports whether s can neither reveal nor open a single cell.
func (h *Hive) stalled(s Stage) bool {
	canGrow := s.GrowSize > 0 && len(h.frontier()) > 0
	if canGrow && s.OpenCount > 0 {
		return false
	}
	if s.OpenCount > 0 {
		for _, row := range h.cells {
			for _, c := range row {
				if c.state == Revealed {
					return false
				}
			}
		}
	}
	return !canGrow
}

// Snapshot is a serializable view of the hive.
type Snapshot struct {
	Rows     int        `json:"rows"`
	Columns  int        `json:"columns"`
	CellSize float64    `json:"cell_size"`
	Stage    int        `json:"stage"`
	Revealed int        `json:"revealed"`
	Cells    []CellInfo `json:"cells"`
	Open     [][2]int   `json:"open"`
}

// Snapshot captures the current grid.
func (h *Hive) Snapshot() Snapshot {
	s := Snapshot{
		Rows:     h.cfg.Rows,
		Columns:  h.cfg.Columns,
		CellSize: h.cfg.CellSize,
		Stage:    h.stage,
		Revealed: h.revealed,
		Cells:    make([]CellInfo, 0, h.cfg.Rows*h.cfg.Columns),
		Open:     make([][2]int, 0, len(h.open)),
	}
	for _, row := range h.cells {
		for _, c := range row {
			s.Cells = append(s.Cells, c.Info())
		}
	}
	for _, c := range h.open {
		s.Open = append(s.Open, [2]int{c.row, c.column})
	}
	return s
}

func (h *Hive) String() string {
	return fmt.Sprintf("hive(%dx%d stage=%d revealed=%d open=%d)",
		h.cfg.Rows, h.cfg.Columns, h.stage, h.revealed, len(h.open))
}
