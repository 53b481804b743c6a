package cluster

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// DefaultMinAreaPoints is the smallest cluster that yields a FireArea.
const DefaultMinAreaPoints = 3

// DeriveAreas builds one FireArea per cluster label with at least minPoints
// members, in the order each label first appears. points, planar and labels
// are parallel slices. Noise points are ignored.
func DeriveAreas(points []domain.EnrichedFirePoint, planar []spatial.Planar, labels []int, minPoints int, newID func() string) ([]domain.FireArea, error) {
	if len(points) != len(labels) || len(planar) != len(labels) {
		return nil, fmt.Errorf("derive areas: %d points, %d planar, %d labels", len(points), len(planar), len(labels))
	}

	var order []int
	members := make(map[int][]int)
	for i, label := range labels {
		if label == domain.NoiseCluster {
			continue
		}
		if _, seen := members[label]; !seen {
			order = append(order, label)
		}
		members[label] = append(members[label], i)
	}

	areas := make([]domain.FireArea, 0, len(order))
	for _, label := range order {
		idx := members[label]
		if len(idx) < minPoints {
			continue
		}

		clusterPlanar := make([]spatial.Planar, len(idx))
		countries := make([]string, len(idx))
		for k, i := range idx {
			clusterPlanar[k] = planar[i]
			countries[k] = points[i].Country
		}

		boundary, area, err := hullBoundary(spatial.ConvexHull(clusterPlanar))
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", label, err)
		}
		areas = append(areas, domain.FireArea{
			ID:         newID(),
			Country:    DominantCountry(countries),
			Boundary:   boundary,
			PointCount: len(idx),
			AreaSqKm:   area,
		})
	}
	return areas, nil
}

// hullBoundary reprojects hull vertices and picks the geometry that fits their count.
func hullBoundary(hull []spatial.Planar) (orb.Geometry, float64, error) {
	pts := make([]orb.Point, len(hull))
	for i, p := range hull {
		g, err := spatial.ToGeographic(p)
		if err != nil {
			return nil, 0, err
		}
		pts[i] = g
	}

	switch len(pts) {
	case 0:
		return nil, 0, fmt.Errorf("empty hull")
	case 1:
		return pts[0], 0, nil
	case 2:
		return orb.LineString(pts), 0, nil
	}
	ring := append(orb.Ring(pts), pts[0])
	return orb.Polygon{ring}, spatial.GeodesicAreaSqKm(ring), nil
}

// DominantCountry returns the most frequent label. Ties go to the label seen
// first; an empty input yields "Unknown".
func DominantCountry(countries []string) string {
	if len(countries) == 0 {
		return domain.UnknownCountry
	}
	counts := make(map[string]int, len(countries))
	var order []string
	for _, c := range countries {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	best := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
