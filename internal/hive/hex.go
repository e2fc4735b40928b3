package hive

// Even rows sit half a cell to the right of odd rows, so the two diagonal
// neighbors above and below lean right on even rows and left on odd rows.
var (
	sideOffsets    = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	evenRowOffsets = [2][2]int{{-1, 1}, {1, 1}}
	oddRowOffsets  = [2][2]int{{-1, -1}, {1, -1}}
)

// neighbors calls fn for each in-bounds hex neighbor of (row, col).
func (h *Hive) neighbors(row, col int, fn func(*Cell) bool) {
	visit := func(dr, dc int) bool {
		r, c := row+dr, col+dc
		if !h.inBounds(r, c) {
			return true
		}
		return fn(h.cells[r][c])
	}
	for _, d := range sideOffsets {
		if !visit(d[0], d[1]) {
			return
		}
	}
	diag := oddRowOffsets
	if row%2 == 0 {
		diag = evenRowOffsets
	}
	for _, d := range diag {
		if !visit(d[0], d[1]) {
			return
		}
	}
}

// hasRevealedNeighbor keeps the hive connected while it grows.
func (h *Hive) hasRevealedNeighbor(row, col int) bool {
	found := false
	h.neighbors(row, col, func(c *Cell) bool {
		found = c.Revealed()
		return !found
	})
	return found
}

// axial converts the shifted-row layout to axial hex coordinates.
func axial(row, col int) (q, r int) {
	return col - (row+(row&1))/2, row
}

// hexDistance counts the steps between two cells on the hex grid.
func hexDistance(r1, c1, r2, c2 int) int {
	q1, a1 := axial(r1, c1)
	q2, a2 := axial(r2, c2)
	dq, dr := q1-q2, a1-a2
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
