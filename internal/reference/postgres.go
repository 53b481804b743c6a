package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// Database is the subset of pgx used by PostgresLoader. *pgxpool.Pool and
// pgxmock pools both satisfy it.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	countriesQuery = `SELECT name, COALESCE(continent, ''), geojson FROM countries ORDER BY id`
	citiesQuery    = `SELECT name, longitude, latitude FROM cities ORDER BY id`
)

// PostgresLoader reads the reference tables from Postgres. Country boundaries
// are stored as GeoJSON geometry text.
type PostgresLoader struct {
	db Database
}

// NewPostgresLoader returns a loader over db.
func NewPostgresLoader(db Database) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// NewPool opens and pings a pgx connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create reference pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping reference database: %w", err)
	}
	return pool, nil
}

// LoadCountries returns every country row in id order.
func (l *PostgresLoader) LoadCountries(ctx context.Context) ([]domain.CountryPolygon, error) {
	rows, err := l.db.Query(ctx, countriesQuery)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var countries []domain.CountryPolygon
	for rows.Next() {
		var (
			c   domain.CountryPolygon
			raw string
		)
		if err := rows.Scan(&c.Name, &c.Continent, &raw); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		g, err := geojson.UnmarshalGeometry([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode boundary of %s: %w", c.Name, err)
		}
		switch g.Geometry().(type) {
		case orb.Polygon, orb.MultiPolygon:
			c.Boundary = g.Geometry()
		default:
			continue
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read country rows: %w", err)
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("%w: countries table is empty", domain.ErrReferenceDataUnavailable)
	}
	return countries, nil
}

// LoadCities returns every city row in id order.
func (l *PostgresLoader) LoadCities(ctx context.Context) ([]domain.CityPoint, error) {
	rows, err := l.db.Query(ctx, citiesQuery)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.CityPoint
	for rows.Next() {
		var c domain.CityPoint
		if err := rows.Scan(&c.Name, &c.Longitude, &c.Latitude); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read city rows: %w", err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("%w: cities table is empty", domain.ErrReferenceDataUnavailable)
	}
	return cities, nil
}
