package reference

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

var (
	countryNameKeys      = []string{"ADMIN", "name", "NAME"}
	countryContinentKeys = []string{"CONTINENT", "continent"}
)

// LoadCountriesGeoJSON reads a country FeatureCollection from disk.
func LoadCountriesGeoJSON(path string) ([]domain.CountryPolygon, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: countries file %s not found", domain.ErrReferenceDataUnavailable, path)
		}
		return nil, fmt.Errorf("open countries file: %w", err)
	}
	defer f.Close()

	countries, err := ReadCountriesGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("countries file %s: %w", path, err)
	}
	return countries, nil
}

// ReadCountriesGeoJSON decodes a FeatureCollection of country boundaries.
// The name comes from ADMIN (Natural Earth) or name/NAME, the continent from
// CONTINENT or continent. Features that are not polygons are skipped.
func ReadCountriesGeoJSON(r io.Reader) ([]domain.CountryPolygon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read countries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	countries := make([]domain.CountryPolygon, 0, len(fc.Features))
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		countries = append(countries, domain.CountryPolygon{
			Name:      firstString(f.Properties, countryNameKeys),
			Continent: firstString(f.Properties, countryContinentKeys),
			Boundary:  f.Geometry,
		})
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("%w: no polygon features", domain.ErrReferenceDataUnavailable)
	}
	return countries, nil
}

func firstString(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if v := props.MustString(k, ""); v != "" {
			return v
		}
	}
	return ""
}
