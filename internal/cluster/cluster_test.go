package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("area-%d", n)
	}
}

func TestDBSCANEmpty(t *testing.T) {
	assert.Empty(t, DBSCAN(nil, DefaultEps, DefaultMinSamples))
}

func TestDBSCANTwoGroupsAndNoise(t *testing.T) {
	var pts []spatial.Planar
	for i := 0; i < 5; i++ {
		pts = append(pts, spatial.Planar{X: float64(i) * 1000, Y: 0})
	}
	for i := 0; i < 6; i++ {
		pts = append(pts, spatial.Planar{X: 500000 + float64(i)*1000, Y: 500000})
	}
	pts = append(pts, spatial.Planar{X: -900000, Y: -900000})

	labels := DBSCAN(pts, DefaultEps, DefaultMinSamples)

	for i := 1; i < 5; i++ {
		assert.Equal(t, labels[0], labels[i])
	}
	for i := 6; i < 11; i++ {
		assert.Equal(t, labels[5], labels[i])
	}
	assert.NotEqual(t, labels[0], labels[5])
	assert.NotEqual(t, domain.NoiseCluster, labels[0])
	assert.NotEqual(t, domain.NoiseCluster, labels[5])
	assert.Equal(t, domain.NoiseCluster, labels[11])
}

func TestDBSCANBorderPoint(t *testing.T) {
	// Five points stacked within eps form a core; the sixth is only reachable
	// from the core point at x=4000.
	pts := []spatial.Planar{
		{X: 0}, {X: 1000}, {X: 2000}, {X: 3000}, {X: 4000},
		{X: 13500},
	}
	labels := DBSCAN(pts, DefaultEps, DefaultMinSamples)
	assert.Equal(t, labels[0], labels[5])
	assert.NotEqual(t, domain.NoiseCluster, labels[5])
}

func TestDBSCANTooSparse(t *testing.T) {
	pts := []spatial.Planar{{X: 0}, {X: 1000}, {X: 2000}, {X: 3000}}
	labels := DBSCAN(pts, DefaultEps, DefaultMinSamples)
	for _, l := range labels {
		assert.Equal(t, domain.NoiseCluster, l)
	}
}

func TestDBSCANEpsIsInclusive(t *testing.T) {
	pts := []spatial.Planar{{X: 0}, {X: 10}}
	labels := DBSCAN(pts, 10, 2)
	assert.Equal(t, []int{0, 0}, labels)
}

// The core, border and noise contract holds on random inputs.
func TestDBSCANContract(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const eps, minSamples = 10000.0, 5

	for trial := 0; trial < 20; trial++ {
		pts := make([]spatial.Planar, 150)
		for i := range pts {
			pts[i] = spatial.Planar{X: rng.Float64() * 150000, Y: rng.Float64() * 150000}
		}
		labels := DBSCAN(pts, eps, minSamples)

		core := make([]bool, len(pts))
		for i := range pts {
			n := 0
			for j := range pts {
				if spatial.Distance(pts[i], pts[j]) <= eps {
					n++
				}
			}
			core[i] = n >= minSamples
		}

		for i := range pts {
			if core[i] {
				require.NotEqual(t, domain.NoiseCluster, labels[i], "core point %d is noise", i)
				for j := range pts {
					if core[j] && spatial.Distance(pts[i], pts[j]) <= eps {
						assert.Equal(t, labels[i], labels[j], "adjacent core points %d and %d split", i, j)
					}
				}
				continue
			}

			reachable := false
			for j := range pts {
				if core[j] && spatial.Distance(pts[i], pts[j]) <= eps {
					reachable = true
					break
				}
			}
			if !reachable {
				assert.Equal(t, domain.NoiseCluster, labels[i], "unreachable point %d is clustered", i)
				continue
			}
			require.NotEqual(t, domain.NoiseCluster, labels[i], "border point %d is noise", i)
			joined := false
			for j := range pts {
				if core[j] && labels[j] == labels[i] && spatial.Distance(pts[i], pts[j]) <= eps {
					joined = true
				}
			}
			assert.True(t, joined, "border point %d joined a cluster it is not adjacent to", i)
		}
	}
}

func TestDBSCANMembershipIsStable(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	pts := make([]spatial.Planar, 200)
	for i := range pts {
		pts[i] = spatial.Planar{X: rng.Float64() * 100000, Y: rng.Float64() * 100000}
	}
	assert.Equal(t, DBSCAN(pts, DefaultEps, DefaultMinSamples), DBSCAN(pts, DefaultEps, DefaultMinSamples))
}

func enriched(t *testing.T, lon, lat float64, country string) (domain.EnrichedFirePoint, spatial.Planar) {
	t.Helper()
	p := domain.NewEnrichedFirePoint(domain.FirePoint{Longitude: lon, Latitude: lat})
	p.Country = country
	planar, err := spatial.ToPlanar(lon, lat)
	require.NoError(t, err)
	return p, planar
}

func TestDeriveAreas(t *testing.T) {
	coords := [][3]any{
		{10.00, 10.00, "Testland"},
		{10.05, 10.00, "Testland"},
		{10.00, 10.05, "Otherland"},
		{10.02, 10.02, "Testland"},
		{20.00, 20.00, "Otherland"},
		{20.01, 20.00, "Otherland"},
		{30.00, 30.00, "In Ocean"},
	}
	labels := []int{4, 4, 4, 4, 7, 7, domain.NoiseCluster}

	var points []domain.EnrichedFirePoint
	var planar []spatial.Planar
	for _, c := range coords {
		p, pl := enriched(t, c[0].(float64), c[1].(float64), c[2].(string))
		points = append(points, p)
		planar = append(planar, pl)
	}

	areas, err := DeriveAreas(points, planar, labels, DefaultMinAreaPoints, sequentialIDs())
	require.NoError(t, err)
	require.Len(t, areas, 1, "cluster of two must be dropped")

	area := areas[0]
	assert.Equal(t, "area-1", area.ID)
	assert.Equal(t, "Testland", area.Country)
	assert.Equal(t, 4, area.PointCount)
	assert.Greater(t, area.AreaSqKm, 0.0)

	poly, ok := area.Boundary.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	ring := poly[0]
	assert.Len(t, ring, 4, "three hull vertices plus the closing vertex")
	assert.Equal(t, ring[0], ring[len(ring)-1])
	corners := []orb.Point{{10, 10}, {10.05, 10}, {10, 10.05}}
	for _, v := range ring {
		assert.True(t, nearAny(v, corners), "unexpected hull vertex %v", v)
	}
}

func nearAny(p orb.Point, candidates []orb.Point) bool {
	for _, c := range candidates {
		if math.Abs(p[0]-c[0]) < 1e-9 && math.Abs(p[1]-c[1]) < 1e-9 {
			return true
		}
	}
	return false
}

func TestDeriveAreasDegenerateHulls(t *testing.T) {
	t.Run("collinear", func(t *testing.T) {
		var points []domain.EnrichedFirePoint
		var planar []spatial.Planar
		for i := 0; i < 3; i++ {
			p, pl := enriched(t, 5+float64(i)*0.01, 5, "Testland")
			points = append(points, p)
			planar = append(planar, pl)
		}
		areas, err := DeriveAreas(points, planar, []int{0, 0, 0}, DefaultMinAreaPoints, sequentialIDs())
		require.NoError(t, err)
		require.Len(t, areas, 1)
		assert.IsType(t, orb.LineString{}, areas[0].Boundary)
		assert.Zero(t, areas[0].AreaSqKm)
	})

	t.Run("coincident", func(t *testing.T) {
		var points []domain.EnrichedFirePoint
		var planar []spatial.Planar
		for i := 0; i < 3; i++ {
			p, pl := enriched(t, 5, 5, "Testland")
			points = append(points, p)
			planar = append(planar, pl)
		}
		areas, err := DeriveAreas(points, planar, []int{2, 2, 2}, DefaultMinAreaPoints, sequentialIDs())
		require.NoError(t, err)
		require.Len(t, areas, 1)
		assert.IsType(t, orb.Point{}, areas[0].Boundary)
		assert.Equal(t, 3, areas[0].PointCount)
	})
}

func TestDeriveAreasMismatchedInput(t *testing.T) {
	_, err := DeriveAreas(make([]domain.EnrichedFirePoint, 2), nil, []int{0, 0}, DefaultMinAreaPoints, sequentialIDs())
	assert.Error(t, err)
}

func TestDeriveAreasFirstAppearanceOrder(t *testing.T) {
	var points []domain.EnrichedFirePoint
	var planar []spatial.Planar
	labels := []int{1, 0, 1, 0, 1, 0}
	for i := range labels {
		p, pl := enriched(t, float64(labels[i])*10+float64(i)*0.01, float64(i%2)*0.01+float64(i)*0.001, fmt.Sprintf("C%d", labels[i]))
		points = append(points, p)
		planar = append(planar, pl)
	}
	areas, err := DeriveAreas(points, planar, labels, DefaultMinAreaPoints, sequentialIDs())
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "C1", areas[0].Country)
	assert.Equal(t, "C0", areas[1].Country)
}

func TestDominantCountry(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"empty", nil, domain.UnknownCountry},
		{"plurality", []string{"A", "B", "B"}, "B"},
		{"tie goes to first seen", []string{"A", "B", "B", "A"}, "A"},
		{"tie goes to first seen when later reaches count first", []string{"B", "A", "A", "B", "C"}, "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DominantCountry(tt.in))
		})
	}
}
