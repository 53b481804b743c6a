package domain

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FireArea is the convex hull of one dense cluster of fire points.
//
// Boundary is an orb.Polygon for a proper hull, an orb.LineString when every
// member is collinear and an orb.Point when all members coincide.
type FireArea struct {
	ID         string
	Country    string
	Boundary   orb.Geometry
	PointCount int
	AreaSqKm   float64
}

// fireAreaJSON is the wire form. GeoJSON is a FeatureCollection encoded as a
// string, which is what map front ends feed straight into their GeoJSON layer.
type fireAreaJSON struct {
	ID         string  `json:"id"`
	Country    string  `json:"country"`
	PointCount int     `json:"point_count"`
	AreaSqKm   float64 `json:"area_sq_km"`
	GeoJSON    string  `json:"geojson"`
}

// MarshalJSON encodes the boundary as a one-feature GeoJSON FeatureCollection string.
func (a FireArea) MarshalJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	if a.Boundary != nil {
		fc.Append(geojson.NewFeature(a.Boundary))
	}
	collection, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode fire area boundary: %w", err)
	}

	return json.Marshal(fireAreaJSON{
		ID:         a.ID,
		Country:    a.Country,
		PointCount: a.PointCount,
		AreaSqKm:   a.AreaSqKm,
		GeoJSON:    string(collection),
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (a *FireArea) UnmarshalJSON(data []byte) error {
	var raw fireAreaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = FireArea{
		ID:         raw.ID,
		Country:    raw.Country,
		PointCount: raw.PointCount,
		AreaSqKm:   raw.AreaSqKm,
	}
	if raw.GeoJSON == "" {
		return nil
	}

	fc, err := geojson.UnmarshalFeatureCollection([]byte(raw.GeoJSON))
	if err != nil {
		return fmt.Errorf("decode fire area boundary: %w", err)
	}
	if len(fc.Features) > 0 {
		a.Boundary = fc.Features[0].Geometry
	}
	return nil
}

// Result is the output of one pipeline run.
type Result struct {
	FireAreas  []FireArea          `json:"fire_areas"`
	FirePoints []EnrichedFirePoint `json:"fire_points"`
}

// EmptyResult returns a Result whose slices encode as [] rather than null.
func EmptyResult() Result {
	return Result{
		FireAreas:  []FireArea{},
		FirePoints: []EnrichedFirePoint{},
	}
}

// NoiseCount returns the number of points that were not assigned to any cluster.
func (r Result) NoiseCount() int {
	n := 0
	for i := range r.FirePoints {
		if r.FirePoints[i].Cluster == NoiseCluster {
			n++
		}
	}
	return n
}
