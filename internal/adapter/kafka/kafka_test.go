package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

func testSnapshot() domain.Snapshot {
	fetched := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return domain.Snapshot{
		RunID:       "run-1",
		FetchedAt:   fetched,
		ProcessedAt: fetched.Add(5 * time.Second),
		Result: domain.Result{
			FireAreas: []domain.FireArea{{
				ID:         "area-1",
				Country:    "Testland",
				Boundary:   orb.Polygon{{{5, 5}, {5.03, 5}, {5, 5.03}, {5, 5}}},
				PointCount: 3,
				AreaSqKm:   5.5,
			}},
			FirePoints: []domain.EnrichedFirePoint{
				{Cluster: 0}, {Cluster: 0}, {Cluster: 0}, {Cluster: domain.NoiseCluster},
			},
		},
	}
}

func TestSerializeArea(t *testing.T) {
	snap := testSnapshot()

	msg, err := serializeArea(snap, snap.Result.FireAreas[0])
	require.NoError(t, err)

	assert.Equal(t, []byte("area-1"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "fetched_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-08-01T12:00:00Z"), msg.Headers[1].Value)
	assert.Equal(t, "kind", msg.Headers[2].Key)
	assert.Equal(t, []byte(KindArea), msg.Headers[2].Value)

	var area domain.FireArea
	require.NoError(t, json.Unmarshal(msg.Value, &area))
	assert.Equal(t, "area-1", area.ID)
	assert.Equal(t, "Testland", area.Country)
	assert.Equal(t, 3, area.PointCount)
	_, ok := area.Boundary.(orb.Polygon)
	assert.True(t, ok)
}

func TestSerializeSummary(t *testing.T) {
	snap := testSnapshot()

	msg, err := serializeSummary(snap)
	require.NoError(t, err)

	assert.Equal(t, []byte(SummaryKey), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, []byte(KindSummary), msg.Headers[2].Value)

	var summary Summary
	require.NoError(t, json.Unmarshal(msg.Value, &summary))
	assert.Equal(t, Summary{
		RunID:       "run-1",
		FetchedAt:   snap.FetchedAt,
		ProcessedAt: snap.ProcessedAt,
		FirePoints:  4,
		FireAreas:   1,
		NoisePoints: 1,
	}, summary)
}

func TestSerializeSummary_EmptySnapshot(t *testing.T) {
	snap := domain.Snapshot{RunID: "run-2", Result: domain.EmptyResult()}

	msg, err := serializeSummary(snap)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"fire_areas":0`)
	assert.Contains(t, string(msg.Value), `"noise_points":0`)
}
