package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnrichedFirePoint(t *testing.T) {
	t.Run("applies unmatched defaults", func(t *testing.T) {
		p := FirePoint{Longitude: 10.5, Latitude: -3.25, Brightness: 320.1, Confidence: "n"}
		got := NewEnrichedFirePoint(p)

		assert.Equal(t, DefaultCountry, got.Country)
		assert.Equal(t, DefaultContinent, got.Continent)
		assert.Equal(t, DefaultCity, got.City)
		assert.Equal(t, DefaultCountry, got.Location)
		assert.Equal(t, NoiseCluster, got.Cluster)
		assert.Equal(t, 10.5, got.Longitude)
		assert.Equal(t, -3.25, got.Latitude)
		assert.Equal(t, "n", got.Confidence)
		require.NotNil(t, got.Brightness)
		assert.Equal(t, 320.1, *got.Brightness)
	})

	t.Run("missing floats become nil", func(t *testing.T) {
		p := FirePoint{
			Brightness: math.NaN(),
			Scan:       math.NaN(),
			Track:      math.Inf(1),
			BrightT31:  math.NaN(),
			FRP:        math.NaN(),
		}
		got := NewEnrichedFirePoint(p)

		assert.Nil(t, got.Brightness)
		assert.Nil(t, got.Scan)
		assert.Nil(t, got.Track)
		assert.Nil(t, got.BrightT31)
		assert.Nil(t, got.FRP)
	})

	t.Run("missing floats encode as null", func(t *testing.T) {
		got := NewEnrichedFirePoint(FirePoint{Brightness: math.NaN(), FRP: 4.2})
		data, err := json.Marshal(got)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Nil(t, m["brightness"])
		assert.Contains(t, m, "brightness")
		assert.Equal(t, 4.2, m["frp"])
		assert.Equal(t, float64(NoiseCluster), m["cluster"])
	})
}

func TestOptionalFloat(t *testing.T) {
	assert.Nil(t, OptionalFloat(math.NaN()))
	assert.Nil(t, OptionalFloat(math.Inf(-1)))
	v := OptionalFloat(0)
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)
}

func TestFireAreaJSON(t *testing.T) {
	t.Run("polygon boundary as feature collection string", func(t *testing.T) {
		area := FireArea{
			ID:         "area-1",
			Country:    "Chad",
			PointCount: 6,
			AreaSqKm:   12.5,
			Boundary:   orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		}
		data, err := json.Marshal(area)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "area-1", m["id"])
		assert.Equal(t, "Chad", m["country"])
		assert.Equal(t, 6.0, m["point_count"])
		assert.Equal(t, 12.5, m["area_sq_km"])

		collection, ok := m["geojson"].(string)
		require.True(t, ok)
		var fc map[string]any
		require.NoError(t, json.Unmarshal([]byte(collection), &fc))
		assert.Equal(t, "FeatureCollection", fc["type"])
		features, ok := fc["features"].([]any)
		require.True(t, ok)
		require.Len(t, features, 1)
		geometry := features[0].(map[string]any)["geometry"].(map[string]any)
		assert.Equal(t, "Polygon", geometry["type"])
	})

	t.Run("decodes what it encodes", func(t *testing.T) {
		area := FireArea{ID: "a", Country: "Unknown", PointCount: 2, Boundary: orb.LineString{{1, 2}, {3, 4}}}
		data, err := json.Marshal(area)
		require.NoError(t, err)

		var got FireArea
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, area.ID, got.ID)
		assert.Equal(t, area.PointCount, got.PointCount)
		assert.Equal(t, orb.LineString{{1, 2}, {3, 4}}, got.Boundary)
	})

	t.Run("invalid geojson string", func(t *testing.T) {
		var got FireArea
		err := json.Unmarshal([]byte(`{"id":"a","geojson":"{nope"}`), &got)
		assert.Error(t, err)
	})
}

func TestEmptyResultEncodesEmptyArrays(t *testing.T) {
	data, err := json.Marshal(EmptyResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"fire_areas":[],"fire_points":[]}`, string(data))
}

func TestResultNoiseCount(t *testing.T) {
	r := Result{FirePoints: []EnrichedFirePoint{{Cluster: 0}, {Cluster: NoiseCluster}, {Cluster: NoiseCluster}}}
	assert.Equal(t, 2, r.NoiseCount())
}

func TestNewSnapshot(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	fetched := time.Date(2025, 8, 1, 11, 58, 0, 0, time.FixedZone("X", 3600))
	snap := NewSnapshot("run-1", fetched, EmptyResult())

	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, now, snap.ProcessedAt)
	assert.Equal(t, time.UTC, snap.FetchedAt.Location())
	assert.True(t, fetched.Equal(snap.FetchedAt))
}
