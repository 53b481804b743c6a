package spatial

import "github.com/paulmach/orb"

// RingContains reports whether pt lies inside ring using even-odd ray casting.
// The ring may or may not repeat its first vertex.
func RingContains(ring orb.Ring, pt orb.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a[1] > pt[1]) != (b[1] > pt[1]) {
			x := (b[0]-a[0])*(pt[1]-a[1])/(b[1]-a[1]) + a[0]
			if pt[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

// PolygonContains reports whether pt lies inside the outer ring of poly and
// outside every hole.
func PolygonContains(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 || !RingContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContains(hole, pt) {
			return false
		}
	}
	return true
}

// GeometryContains handles the polygonal orb geometries. Anything else never
// contains a point.
func GeometryContains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return PolygonContains(geom, pt)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if PolygonContains(poly, pt) {
				return true
			}
		}
	case orb.Ring:
		return RingContains(geom, pt)
	}
	return false
}
