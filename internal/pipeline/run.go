package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/cluster"
	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/enrich"
	"github.com/couchcryptid/firemap-service/internal/reference"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// Options tunes one pipeline run. Zero values select the defaults.
type Options struct {
	MaxCityDistance float64 // planar meters
	Eps             float64 // planar meters
	MinSamples      int
	MinAreaPoints   int
	NewID           func() string
}

// DefaultOptions returns the standard parameters.
func DefaultOptions() Options {
	return Options{
		MaxCityDistance: enrich.DefaultMaxCityDistance,
		Eps:             cluster.DefaultEps,
		MinSamples:      cluster.DefaultMinSamples,
		MinAreaPoints:   cluster.DefaultMinAreaPoints,
		NewID:           uuid.NewString,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxCityDistance <= 0 {
		o.MaxCityDistance = def.MaxCityDistance
	}
	if o.Eps <= 0 {
		o.Eps = def.Eps
	}
	if o.MinSamples <= 0 {
		o.MinSamples = def.MinSamples
	}
	if o.MinAreaPoints < cluster.DefaultMinAreaPoints {
		o.MinAreaPoints = cluster.DefaultMinAreaPoints
	}
	if o.NewID == nil {
		o.NewID = def.NewID
	}
	return o
}

// Run attributes and clusters one batch of fire points.
//
// An empty batch returns an empty Result without touching the reference data.
// Any point with an invalid coordinate fails the whole batch. Failures match
// domain.ErrProcessingFailed; a Result is returned only when every stage
// completed.
func Run(points []domain.FirePoint, ref *reference.Datasets, opts Options) (result domain.Result, err error) {
	if len(points) == 0 {
		return domain.EmptyResult(), nil
	}
	opts = opts.withDefaults()

	planar := make([]spatial.Planar, len(points))
	for i, p := range points {
		pl, err := spatial.ToPlanar(p.Longitude, p.Latitude)
		if err != nil {
			return domain.Result{}, fmt.Errorf("%w: fire point %d: %w", domain.ErrProcessingFailed, i, err)
		}
		planar[i] = pl
	}

	defer func() {
		if r := recover(); r != nil {
			result = domain.Result{}
			err = fmt.Errorf("%w: %v", domain.ErrProcessingFailed, r)
		}
	}()

	attributor := enrich.NewAttributor(ref, opts.MaxCityDistance)
	enriched := make([]domain.EnrichedFirePoint, len(points))
	for i, p := range points {
		e := domain.NewEnrichedFirePoint(p)
		attributor.Attribute(orb.Point{p.Longitude, p.Latitude}, planar[i]).Apply(&e)
		enriched[i] = e
	}

	labels := cluster.DBSCAN(planar, opts.Eps, opts.MinSamples)
	for i := range enriched {
		enriched[i].Cluster = labels[i]
	}

	areas, err := cluster.DeriveAreas(enriched, planar, labels, opts.MinAreaPoints, opts.NewID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrProcessingFailed, err)
	}

	return domain.Result{FireAreas: areas, FirePoints: enriched}, nil
}
