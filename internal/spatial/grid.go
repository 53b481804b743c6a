package spatial

import (
	"math"
	"sort"
)

type cellKey struct {
	cx, cy int64
}

// Grid is a uniform bucket index over a fixed set of planar points. It is
// immutable after NewGrid and safe for concurrent reads.
type Grid struct {
	cell   float64
	points []Planar
	cells  map[cellKey][]int
}

// NewGrid indexes points into square buckets of side cellSize meters.
// A non-positive cellSize falls back to a single bucket.
func NewGrid(points []Planar, cellSize float64) *Grid {
	if cellSize <= 0 || !isFinite(cellSize) {
		cellSize = math.MaxFloat64
	}
	g := &Grid{
		cell:   cellSize,
		points: points,
		cells:  make(map[cellKey][]int),
	}
	for i, p := range points {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

// Len returns the number of indexed points.
func (g *Grid) Len() int {
	return len(g.points)
}

// Within returns the indices of every point whose distance to p is at most
// radius, in ascending index order.
func (g *Grid) Within(p Planar, radius float64) []int {
	var out []int
	g.visit(p, radius, func(i int, d float64) {
		if d <= radius {
			out = append(out, i)
		}
	})
	sort.Ints(out)
	return out
}

// Nearest returns the index of the point closest to p, provided it lies within
// maxDistance. Equidistant points resolve to the lowest index.
func (g *Grid) Nearest(p Planar, maxDistance float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	g.visit(p, maxDistance, func(i int, d float64) {
		if d > maxDistance {
			return
		}
		if d < bestDist || (d == bestDist && i < best) {
			best, bestDist = i, d
		}
	})
	return best, best >= 0
}

// visit calls fn for every point in the buckets that can hold a point within
// radius of p.
func (g *Grid) visit(p Planar, radius float64, fn func(i int, d float64)) {
	if len(g.points) == 0 || radius < 0 || math.IsNaN(radius) {
		return
	}
	if g.cell == math.MaxFloat64 || math.IsInf(radius, 1) {
		for i, q := range g.points {
			fn(i, Distance(p, q))
		}
		return
	}

	span := int64(math.Ceil(radius / g.cell))
	center := g.key(p)
	if span > int64(len(g.cells)) {
		// Wide searches over a sparse index are cheaper as a linear scan.
		for i, q := range g.points {
			fn(i, Distance(p, q))
		}
		return
	}
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for _, i := range g.cells[cellKey{center.cx + dx, center.cy + dy}] {
				fn(i, Distance(p, g.points[i]))
			}
		}
	}
}

func (g *Grid) key(p Planar) cellKey {
	if g.cell == math.MaxFloat64 {
		return cellKey{}
	}
	return cellKey{
		cx: int64(math.Floor(p.X / g.cell)),
		cy: int64(math.Floor(p.Y / g.cell)),
	}
}
