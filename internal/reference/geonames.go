package reference

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// GeoNames dump columns.
const (
	geonamesNameCol = 1
	geonamesLatCol  = 4
	geonamesLonCol  = 5
)

const maxGeonamesLine = 1 << 20

// LoadCitiesGeoNames reads a GeoNames citiesNNNN.txt dump from disk. It
// returns the parsed cities and the number of malformed rows skipped.
func LoadCitiesGeoNames(path string) ([]domain.CityPoint, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: cities file %s not found", domain.ErrReferenceDataUnavailable, path)
		}
		return nil, 0, fmt.Errorf("open cities file: %w", err)
	}
	defer f.Close()

	cities, skipped, err := ReadCitiesGeoNames(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("cities file %s: %w", path, err)
	}
	return cities, skipped, nil
}

// ReadCitiesGeoNames parses tab-separated GeoNames rows. Rows with too few
// columns, an empty name or unparsable coordinates are skipped and counted.
func ReadCitiesGeoNames(r io.Reader) ([]domain.CityPoint, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxGeonamesLine)

	var cities []domain.CityPoint
	skipped := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		city, ok := parseGeonamesRow(line)
		if !ok {
			skipped++
			continue
		}
		cities = append(cities, city)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read cities: %w", err)
	}
	if len(cities) == 0 {
		return nil, skipped, fmt.Errorf("%w: no city rows", domain.ErrReferenceDataUnavailable)
	}
	return cities, skipped, nil
}

func parseGeonamesRow(line string) (domain.CityPoint, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) <= geonamesLonCol {
		return domain.CityPoint{}, false
	}
	name := strings.TrimSpace(cols[geonamesNameCol])
	if name == "" {
		return domain.CityPoint{}, false
	}
	lat, err := strconv.ParseFloat(cols[geonamesLatCol], 64)
	if err != nil {
		return domain.CityPoint{}, false
	}
	lon, err := strconv.ParseFloat(cols[geonamesLonCol], 64)
	if err != nil {
		return domain.CityPoint{}, false
	}
	return domain.CityPoint{Name: name, Longitude: lon, Latitude: lat}, true
}
