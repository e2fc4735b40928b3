package hive

import "gonum.org/v1/gonum/spatial/r2"

// Path is a flight trajectory drawn for a bee. It binds to at most one open
// cell at a time and never owns it.
type Path struct {
	ID     string
	points []r2.Vec
	target *Cell
}

// NewPath builds a path from its points in flight order.
func NewPath(id string, points ...r2.Vec) *Path {
	p := &Path{ID: id}
	p.points = append(p.points, points...)
	return p
}

// Append extends the path. A bound path keeps its target; callers snap again
// if the endpoint moved away.
func (p *Path) Append(points ...r2.Vec) { p.points = append(p.points, points...) }

// Points returns a copy of the path points.
func (p *Path) Points() []r2.Vec {
	out := make([]r2.Vec, len(p.points))
	copy(out, p.points)
	return out
}

// Len is the number of points on the path.
func (p *Path) Len() int { return len(p.points) }

// Point returns the i-th point.
func (p *Path) Point(i int) r2.Vec { return p.points[i] }

// Last returns the terminal point, false on an empty path.
func (p *Path) Last() (r2.Vec, bool) {
	if len(p.points) == 0 {
		return r2.Vec{}, false
	}
	return p.points[len(p.points)-1], true
}

// Target is the open cell this path is bound to, nil when unbound.
func (p *Path) Target() *Cell { return p.target }

// Bound reports whether the path currently targets a cell.
func (p *Path) Bound() bool { return p.target != nil }
