package spatial

import "sort"

// ConvexHull returns the hull vertices of pts in counter-clockwise order using
// Andrew's monotone chain. The first vertex is not repeated. Duplicate points
// collapse, so a collinear input yields its two extreme points and a set of
// coincident points yields a single vertex.
func ConvexHull(pts []Planar) []Planar {
	sorted := make([]Planar, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	unique := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p == unique[len(unique)-1] {
			continue
		}
		unique = append(unique, p)
	}
	if len(unique) < 3 {
		return unique
	}

	hull := make([]Planar, 0, 2*len(unique))
	for _, p := range unique {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		p := unique[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// cross is the z component of (a→b) × (a→c); positive for a left turn.
func cross(a, b, c Planar) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
