package game

import "gonum.org/v1/gonum/spatial/r2"

// plan routes every bee that has no bound path straight to a random open
// cell, oldest bees first.
func (s *Session) plan() {
	open := s.hive.OpenCells()
	if len(open) == 0 {
		return
	}
	for _, b := range s.Bees() {
		if b.path != nil && b.path.Bound() {
			continue
		}
		c := open[s.rng.Intn(len(open))]
		if _, err := s.DrawPath(b.ID, []r2.Vec{b.Position(), c.Center()}); err != nil {
			return
		}
	}
}
