// Package spatial holds the planar geometry used by attribution and clustering:
// the equidistant cylindrical projection, point-in-polygon, convex hull,
// geodesic area and a uniform grid index.
package spatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// EarthRadiusMeters is the WGS84 semi-major axis used by the projection.
const EarthRadiusMeters = 6378137.0

const degToRad = math.Pi / 180

// clampTolerance absorbs floating-point drift on the round trip back from planar.
const clampTolerance = 1e-9

// Planar is a projected coordinate in meters.
type Planar struct {
	X float64
	Y float64
}

// ToPlanar projects a WGS84 coordinate onto the equidistant cylindrical plane.
func ToPlanar(lon, lat float64) (Planar, error) {
	if !isFinite(lon) || !isFinite(lat) {
		return Planar{}, fmt.Errorf("%w: non-finite coordinate (%v, %v)", domain.ErrInvalidCoordinate, lon, lat)
	}
	if math.Abs(lon) > 180 || math.Abs(lat) > 90 {
		return Planar{}, fmt.Errorf("%w: coordinate (%v, %v) out of range", domain.ErrInvalidCoordinate, lon, lat)
	}
	return Planar{
		X: EarthRadiusMeters * lon * degToRad,
		Y: EarthRadiusMeters * lat * degToRad,
	}, nil
}

// ToGeographic inverts ToPlanar. The result is an orb.Point in [lon, lat] order.
func ToGeographic(p Planar) (orb.Point, error) {
	if !isFinite(p.X) || !isFinite(p.Y) {
		return orb.Point{}, fmt.Errorf("%w: non-finite planar coordinate (%v, %v)", domain.ErrInvalidCoordinate, p.X, p.Y)
	}
	lon := p.X / EarthRadiusMeters / degToRad
	lat := p.Y / EarthRadiusMeters / degToRad
	if math.Abs(lon) > 180+clampTolerance || math.Abs(lat) > 90+clampTolerance {
		return orb.Point{}, fmt.Errorf("%w: planar coordinate (%v, %v) out of range", domain.ErrInvalidCoordinate, p.X, p.Y)
	}
	return orb.Point{clamp(lon, 180), clamp(lat, 90)}, nil
}

// Distance is the Euclidean distance between two planar coordinates in meters.
func Distance(a, b Planar) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
