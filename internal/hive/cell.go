package hive

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// CellState is the lifecycle position of one honeycomb.
type CellState int

const (
	Hidden CellState = iota
	Revealed
	Open
	Occupied
)

var cellStateNames = [...]string{"hidden", "revealed", "open", "occupied"}

func (s CellState) String() string {
	if s < 0 || int(s) >= len(cellStateNames) {
		return "unknown"
	}
	return cellStateNames[s]
}

// MarshalText renders the state by name in JSON payloads.
func (s CellState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a state name.
func (s *CellState) UnmarshalText(b []byte) error {
	for i, name := range cellStateNames {
		if name == string(b) {
			*s = CellState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell state %q", b)
}

// Cell is one honeycomb of the hive.
type Cell struct {
	row, column int
	center      r2.Vec
	state       CellState
	capacity    int
	occupants   int
	paths       []*Path
}

func (c *Cell) Row() int         { return c.row }
func (c *Cell) Column() int      { return c.column }
func (c *Cell) Center() r2.Vec   { return c.center }
func (c *Cell) State() CellState { return c.state }
func (c *Cell) Capacity() int    { return c.capacity }
func (c *Cell) Occupants() int   { return c.occupants }

// Revealed reports whether the cell is visible, whatever else it is doing.
func (c *Cell) Revealed() bool { return c.state != Hidden }

// Paths returns a copy of the paths currently bound to the cell.
func (c *Cell) Paths() []*Path {
	out := make([]*Path, len(c.paths))
	copy(out, c.paths)
	return out
}

func (c *Cell) register(p *Path) {
	for _, q := range c.paths {
		if q == p {
			return
		}
	}
	c.paths = append(c.paths, p)
}

func (c *Cell) unregister(p *Path) {
	kept := c.paths[:0]
	for _, q := range c.paths {
		if q != p {
			kept = append(kept, q)
		}
	}
	c.paths = kept
}

// CellInfo is a read-only view of a cell for snapshots and payloads.
type CellInfo struct {
	Row       int       `json:"row"`
	Column    int       `json:"column"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	State     CellState `json:"state"`
	Capacity  int       `json:"capacity,omitempty"`
	Occupants int       `json:"occupants,omitempty"`
}

// Info snapshots the cell.
func (c *Cell) Info() CellInfo {
	return CellInfo{
		Row:       c.row,
		Column:    c.column,
		X:         c.center.X,
		Y:         c.center.Y,
		State:     c.state,
		Capacity:  c.capacity,
		Occupants: c.occupants,
	}
}
