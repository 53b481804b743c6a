// Package enrich attributes fire points to a country, continent and nearest
// city using the static reference tables.
package enrich

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/reference"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// DefaultMaxCityDistance is the nearest-city cutoff in planar meters.
const DefaultMaxCityDistance = 200000.0

// Attribution is the outcome of attributing one point.
type Attribution struct {
	Country   string
	Continent string
	City      string
	Location  string
	Matched   bool
}

// Attributor attributes points against one Datasets value. It holds no mutable
// state and may be shared across goroutines.
type Attributor struct {
	ref         *reference.Datasets
	maxDistance float64
}

// NewAttributor returns an Attributor over ref. A nil ref behaves like empty
// tables; a non-positive maxDistance selects DefaultMaxCityDistance.
func NewAttributor(ref *reference.Datasets, maxDistance float64) *Attributor {
	if ref == nil {
		ref = reference.Empty()
	}
	if maxDistance <= 0 || math.IsNaN(maxDistance) {
		maxDistance = DefaultMaxCityDistance
	}
	return &Attributor{ref: ref, maxDistance: maxDistance}
}

// Degraded returns an error wrapping domain.ErrReferenceDataUnavailable when a
// reference table is empty, nil otherwise.
func (a *Attributor) Degraded() error {
	return a.ref.Check()
}

// Attribute resolves the country and nearest city of one point. planar must be
// the projection of pt.
func (a *Attributor) Attribute(pt orb.Point, planar spatial.Planar) Attribution {
	country, continent, matched := a.country(pt)

	city, hasCity := "", false
	if i, ok := a.ref.CityIndex().Nearest(planar, a.maxDistance); ok {
		city, hasCity = a.ref.Cities()[i].Name, true
	}

	out := Attribution{
		Country:   country,
		Continent: continent,
		City:      domain.DefaultCity,
		Matched:   matched,
	}
	if hasCity {
		out.City = city
	}
	if matched {
		out.Location = DeriveLocationLabel(country, city, hasCity)
	} else {
		out.Location = DeriveLocationLabel("", city, hasCity)
	}
	return out
}

// Apply writes the attribution onto an enriched point.
func (at Attribution) Apply(p *domain.EnrichedFirePoint) {
	p.Country = at.Country
	p.Continent = at.Continent
	p.City = at.City
	p.Location = at.Location
}

func (a *Attributor) country(pt orb.Point) (string, string, bool) {
	for i, c := range a.ref.Countries() {
		if !a.ref.CountryBound(i).Contains(pt) {
			continue
		}
		if spatial.GeometryContains(c.Boundary, pt) {
			return c.Name, c.Continent, true
		}
	}
	return domain.DefaultCountry, domain.DefaultContinent, false
}
