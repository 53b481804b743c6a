package reference

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// Loader populates the two reference tables from some backing store.
type Loader interface {
	LoadCountries(ctx context.Context) ([]domain.CountryPolygon, error)
	LoadCities(ctx context.Context) ([]domain.CityPoint, error)
}

// FileLoader reads countries from a GeoJSON file and cities from a GeoNames dump.
type FileLoader struct {
	CountriesPath string
	CitiesPath    string
	Logger        *slog.Logger
}

// LoadCountries implements Loader.
func (l FileLoader) LoadCountries(_ context.Context) ([]domain.CountryPolygon, error) {
	return LoadCountriesGeoJSON(l.CountriesPath)
}

// LoadCities implements Loader. Skipped rows are logged at warn level.
func (l FileLoader) LoadCities(_ context.Context) ([]domain.CityPoint, error) {
	cities, skipped, err := LoadCitiesGeoNames(l.CitiesPath)
	if skipped > 0 && l.Logger != nil {
		l.Logger.Warn("skipped malformed city rows", "path", l.CitiesPath, "skipped", skipped)
	}
	return cities, err
}

// Load reads both tables and builds Datasets. A table that fails to load is
// left empty, so Load always returns usable Datasets; the returned error
// describes every failure and is nil only when both tables loaded with rows.
func Load(ctx context.Context, loader Loader, logger *slog.Logger) (*Datasets, error) {
	var errs []error

	countries, err := loader.LoadCountries(ctx)
	if err != nil {
		errs = append(errs, err)
		countries = nil
	}
	cities, err := loader.LoadCities(ctx)
	if err != nil {
		errs = append(errs, err)
		cities = nil
	}

	d := New(countries, cities)
	if len(errs) == 0 {
		if err := d.Check(); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Info("reference data loaded",
		"countries", len(d.Countries()),
		"cities", len(d.Cities()),
	)
	return d, errors.Join(errs...)
}
