package hive

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every construction-time validation failure.
var ErrInvalidConfig = errors.New("invalid hive config")

// SnapPolicy chooses which open cell a path endpoint binds to.
type SnapPolicy string

const (
	// SnapNearest binds to the closest open cell inside the snap radius.
	SnapNearest SnapPolicy = "nearest"
	// SnapFirst binds to the first open cell (in open order) inside the snap radius.
	SnapFirst SnapPolicy = "first"
)

// Stage controls one step of hive growth.
type Stage struct {
	GrowSize  int `json:"grow_size"`  // cells revealed when the stage is entered
	OpenCount int `json:"open_count"` // cells opened right after growing
}

// Config is the static hive configuration supplied at construction.
type Config struct {
	Rows        int        `json:"rows"`
	Columns     int        `json:"columns"`
	CellSize    float64    `json:"cell_size"`    // width and height of one honeycomb
	StartRadius int        `json:"start_radius"` // hex distance from center revealed by Initialize
	BeesPerCell int        `json:"bees_per_cell"`
	SnapFactor  float64    `json:"snap_factor"` // snap radius as a fraction of CellSize
	SnapPolicy  SnapPolicy `json:"snap_policy"`
	Stages      []Stage    `json:"stages"`
}

// DefaultConfig mirrors the stock hive of the game.
func DefaultConfig() Config {
	return Config{
		Rows:        9,
		Columns:     9,
		CellSize:    1,
		StartRadius: 2,
		BeesPerCell: 3,
		SnapFactor:  0.55,
		SnapPolicy:  SnapNearest,
		Stages: []Stage{
			{GrowSize: 3, OpenCount: 1},
			{GrowSize: 4, OpenCount: 2},
			{GrowSize: 5, OpenCount: 3},
			{GrowSize: 6, OpenCount: 4},
		},
	}
}

// Validate reports the first configuration problem, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Columns <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Rows, c.Columns)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %g", ErrInvalidConfig, c.CellSize)
	}
	if c.StartRadius < 1 {
		return fmt.Errorf("%w: start radius must be at least 1, got %d", ErrInvalidConfig, c.StartRadius)
	}
	// a radius r covers 2r-1 cells across the center.
	if span := 2*c.StartRadius - 1; span > c.Rows || span > c.Columns {
		return fmt.Errorf("%w: start radius %d needs a %dx%d grid, got %dx%d",
			ErrInvalidConfig, c.StartRadius, span, span, c.Rows, c.Columns)
	}
	if c.BeesPerCell < 1 {
		return fmt.Errorf("%w: bees per cell must be at least 1, got %d", ErrInvalidConfig, c.BeesPerCell)
	}
	if c.SnapFactor <= 0 {
		return fmt.Errorf("%w: snap factor must be positive, got %g", ErrInvalidConfig, c.SnapFactor)
	}
	switch c.SnapPolicy {
	case SnapNearest, SnapFirst:
	default:
		return fmt.Errorf("%w: unknown snap policy %q", ErrInvalidConfig, c.SnapPolicy)
	}
	if len(c.Stages) == 0 {
		return fmt.Errorf("%w: at least one growth stage is required", ErrInvalidConfig)
	}
	total := c.Rows * c.Columns
	for i, s := range c.Stages {
		if s.GrowSize < 0 || s.OpenCount < 0 {
			return fmt.Errorf("%w: stage %d has negative sizes (%d, %d)", ErrInvalidConfig, i, s.GrowSize, s.OpenCount)
		}
		if s.GrowSize > total || s.OpenCount > total {
			return fmt.Errorf("%w: stage %d requests (%d, %d) cells but the grid has %d",
				ErrInvalidConfig, i, s.GrowSize, s.OpenCount, total)
		}
	}
	return nil
}

// SnapRadius is the distance within which a path endpoint binds to a cell.
func (c Config) SnapRadius() float64 { return c.CellSize * c.SnapFactor }
