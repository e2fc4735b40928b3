package hive

import "gonum.org/v1/gonum/spatial/r2"

// SnapToNearest binds the end of p to an open cell within the snap radius and
// returns that cell, or nil when none qualifies. With SnapFirst the scan stops
// at the first qualifying cell in open order; with SnapNearest the closest
// qualifying cell wins. A path bound elsewhere is released first.
//
// The scan never closes cells, so it is safe to call between any two ticks.
func (h *Hive) SnapToNearest(p *Path) *Cell {
	end, ok := p.Last()
	if !ok {
		return nil
	}
	radius := h.cfg.SnapRadius()
	var (
		best     *Cell
		bestDist float64
	)
	for _, c := range h.open {
		d := r2.Norm(r2.Sub(end, c.center))
		if d >= radius {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
		if h.cfg.SnapPolicy == SnapFirst {
			break
		}
	}
	if best == nil {
		return nil
	}
	h.bind(p, best)
	return best
}

func (h *Hive) bind(p *Path, c *Cell) {
	if p.target == c {
		return
	}
	h.Unbind(p)
	p.target = c
	c.register(p)
	h.observer.PathBound(p, c)
}

// Unbind releases p from its target without touching the cell state.
func (h *Hive) Unbind(p *Path) {
	if p.target == nil {
		return
	}
	prev := p.target
	prev.unregister(p)
	p.target = nil
	h.observer.PathDetached(p, prev)
}
