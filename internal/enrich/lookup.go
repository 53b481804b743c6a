package enrich

import (
	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// AttributeCountry returns the first country in table order whose boundary
// contains pt, or ("In Ocean", "Ocean") when none does. An unnamed match also
// takes the defaults.
func AttributeCountry(pt orb.Point, countries []domain.CountryPolygon) (string, string) {
	for _, c := range countries {
		if c.Boundary == nil || !c.Boundary.Bound().Contains(pt) {
			continue
		}
		if spatial.GeometryContains(c.Boundary, pt) {
			return orDefault(c.Name, domain.DefaultCountry), orDefault(c.Continent, domain.DefaultContinent)
		}
	}
	return domain.DefaultCountry, domain.DefaultContinent
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// AttributeNearestCity scans every city and returns the closest one by planar
// distance. Ties go to the earlier city. ok is false when the table is empty,
// a city cannot be projected, or the closest city is farther than
// maxDistanceMeters.
func AttributeNearestCity(pt spatial.Planar, cities []domain.CityPoint, maxDistanceMeters float64) (domain.CityPoint, bool) {
	best, bestDist := -1, 0.0
	for i, c := range cities {
		p, err := spatial.ToPlanar(c.Longitude, c.Latitude)
		if err != nil {
			continue
		}
		d := spatial.Distance(pt, p)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > maxDistanceMeters {
		return domain.CityPoint{}, false
	}
	return cities[best], true
}

// DeriveLocationLabel builds the display label of a point. An empty country
// means attribution failed and always yields "In Ocean"; otherwise the label
// is "Remote Area" without a city and "{city}, {country}" with one.
func DeriveLocationLabel(country, city string, hasCity bool) string {
	if country == "" || country == domain.DefaultCountry {
		return domain.DefaultCountry
	}
	if !hasCity {
		return domain.DefaultCity
	}
	return city + ", " + country
}
