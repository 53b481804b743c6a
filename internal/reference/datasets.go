// Package reference holds the static country and city tables used for
// attribution, together with the loaders that populate them.
package reference

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// CityIndexCellMeters is the bucket size of the city grid. It matches the
// default nearest-city cutoff so a lookup touches at most nine buckets.
const CityIndexCellMeters = 200000.0

// Datasets is the immutable pair of reference tables. Safe for concurrent use.
type Datasets struct {
	countries []domain.CountryPolygon
	bounds    []orb.Bound

	cities     []domain.CityPoint
	cityPlanar []spatial.Planar
	cityIndex  *spatial.Grid
}

// New builds Datasets from already-loaded tables. Countries without a boundary
// and cities whose coordinates cannot be projected are dropped; the remaining
// rows keep their relative order, which is the tie-break order for attribution.
// A country with no name or continent takes the ocean defaults.
func New(countries []domain.CountryPolygon, cities []domain.CityPoint) *Datasets {
	d := &Datasets{
		countries: make([]domain.CountryPolygon, 0, len(countries)),
		bounds:    make([]orb.Bound, 0, len(countries)),
		cities:    make([]domain.CityPoint, 0, len(cities)),
	}
	for _, c := range countries {
		if c.Boundary == nil {
			continue
		}
		if c.Name == "" {
			c.Name = domain.DefaultCountry
		}
		if c.Continent == "" {
			c.Continent = domain.DefaultContinent
		}
		d.countries = append(d.countries, c)
		d.bounds = append(d.bounds, c.Boundary.Bound())
	}

	d.cityPlanar = make([]spatial.Planar, 0, len(cities))
	for _, c := range cities {
		p, err := spatial.ToPlanar(c.Longitude, c.Latitude)
		if err != nil {
			continue
		}
		d.cities = append(d.cities, c)
		d.cityPlanar = append(d.cityPlanar, p)
	}
	d.cityIndex = spatial.NewGrid(d.cityPlanar, CityIndexCellMeters)
	return d
}

// Empty returns Datasets with no rows. Attribution against it yields defaults.
func Empty() *Datasets {
	return New(nil, nil)
}

// Countries returns the country table in attribution order.
func (d *Datasets) Countries() []domain.CountryPolygon { return d.countries }

// CountryBound returns the precomputed bounding box of country i.
func (d *Datasets) CountryBound(i int) orb.Bound { return d.bounds[i] }

// Cities returns the city table in attribution order.
func (d *Datasets) Cities() []domain.CityPoint { return d.cities }

// CityPlanar returns the projected coordinate of city i.
func (d *Datasets) CityPlanar(i int) spatial.Planar { return d.cityPlanar[i] }

// CityIndex returns the grid over projected city coordinates.
func (d *Datasets) CityIndex() *spatial.Grid { return d.cityIndex }

// Check reports which tables are empty. The error wraps
// domain.ErrReferenceDataUnavailable; callers treat it as degraded, not fatal.
func (d *Datasets) Check() error {
	var errs []error
	if d == nil || len(d.countries) == 0 {
		errs = append(errs, fmt.Errorf("%w: country table is empty", domain.ErrReferenceDataUnavailable))
	}
	if d == nil || len(d.cities) == 0 {
		errs = append(errs, fmt.Errorf("%w: city table is empty", domain.ErrReferenceDataUnavailable))
	}
	return errors.Join(errs...)
}
