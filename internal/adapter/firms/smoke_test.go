//go:build firms

package firms

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real FIRMS API and require a valid FIRMS_MAP_KEY env var.
// Run with: go test -tags=firms ./internal/adapter/firms/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("FIRMS_MAP_KEY")
	if key == "" {
		t.Fatal("FIRMS_MAP_KEY must be set to run smoke tests")
	}
	return NewClient("https://firms.modaps.eosdis.nasa.gov", key, "VIIRS_SNPP_NRT", "-125,24,-66,50", 1,
		30*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_Fetch(t *testing.T) {
	c := smokeClient(t)

	batch, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, batch.FetchedAt.IsZero())
	assert.Equal(t, "VIIRS_SNPP_NRT", batch.Source)

	for _, p := range batch.Points {
		assert.False(t, math.IsNaN(p.Latitude))
		assert.False(t, math.IsNaN(p.Longitude))
		assert.GreaterOrEqual(t, p.Longitude, -125.0)
		assert.LessOrEqual(t, p.Longitude, -66.0)
	}
	t.Logf("fetched %d points", len(batch.Points))
}
