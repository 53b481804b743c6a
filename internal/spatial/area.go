package spatial

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// MeanEarthRadiusMeters is the IUGG mean radius used to scale steradians to area.
const MeanEarthRadiusMeters = 6371008.8

// GeodesicAreaSqKm returns the area of the spherical polygon bounded by ring in
// square kilometers. Rings with fewer than three distinct vertices have zero area.
// Orientation does not matter: the smaller of the two regions is used.
func GeodesicAreaSqKm(ring orb.Ring) float64 {
	pts := make([]s2.Point, 0, len(ring))
	for i, p := range ring {
		if i == len(ring)-1 && len(ring) > 1 && p == ring[0] {
			break
		}
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p[1], p[0])))
	}
	if len(pts) < 3 {
		return 0
	}

	steradians := s2.LoopFromPoints(pts).Area()
	if steradians > 2*math.Pi {
		steradians = 4*math.Pi - steradians
	}
	return steradians * MeanEarthRadiusMeters * MeanEarthRadiusMeters / 1e6
}
