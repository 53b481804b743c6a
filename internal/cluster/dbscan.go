// Package cluster groups projected fire points with DBSCAN and derives one
// FireArea per dense cluster.
package cluster

import (
	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// Default DBSCAN parameters, in planar meters and points.
const (
	DefaultEps        = 10000.0
	DefaultMinSamples = 5
)

// DBSCAN labels every point with a cluster id or domain.NoiseCluster.
//
// The neighbourhood of a point is every point within eps of it, itself
// included. A point is a core point when its neighbourhood holds at least
// minSamples points. Clusters grow from core points in input order; a border
// point reachable from several clusters stays with the first that claims it.
// Ids are assigned from 0 in the order clusters are discovered.
func DBSCAN(points []spatial.Planar, eps float64, minSamples int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = domain.NoiseCluster
	}
	if len(points) == 0 {
		return labels
	}

	index := spatial.NewGrid(points, eps)
	neighbors := make([][]int, len(points))
	core := make([]bool, len(points))
	for i, p := range points {
		neighbors[i] = index.Within(p, eps)
		core[i] = len(neighbors[i]) >= minSamples
	}

	next := 0
	var stack []int
	for i := range points {
		if labels[i] != domain.NoiseCluster || !core[i] {
			continue
		}
		labels[i] = next
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !core[cur] {
				continue
			}
			for _, nb := range neighbors[cur] {
				if labels[nb] != domain.NoiseCluster {
					continue
				}
				labels[nb] = next
				if core[nb] {
					stack = append(stack, nb)
				}
			}
		}
		next++
	}
	return labels
}
