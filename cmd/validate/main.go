// Command validate performs integrity checks on the reference tables used for
// fire point attribution: the country boundaries GeoJSON and the GeoNames city
// dump. With -csv it also runs the pipeline over a FIRMS CSV file and checks
// the structural guarantees of the result.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -countries data/ne_110m_admin_0_countries.geojson \
//	  -cities data/cities1000.txt \
//	  -csv data/MODIS_C6_1_Global_24h.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/firemap-service/internal/adapter/firms"
	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/enrich"
	"github.com/couchcryptid/firemap-service/internal/pipeline"
	"github.com/couchcryptid/firemap-service/internal/reference"
	"github.com/couchcryptid/firemap-service/internal/spatial"
)

// citySample bounds how many cities the index parity phase checks.
const citySample = 2000

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	countriesPath := flag.String("countries", "", "country boundaries GeoJSON")
	citiesPath := flag.String("cities", "", "GeoNames cities dump")
	csvPath := flag.String("csv", "", "optional FIRMS CSV file for a pipeline check")
	flag.Parse()

	if *countriesPath == "" || *citiesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*countriesPath, *citiesPath, *csvPath))
}

func run(countriesPath, citiesPath, csvPath string) int {
	fmt.Println("=== Reference Data Integrity Validation ===")
	fmt.Println()

	countries, err := reference.LoadCountriesGeoJSON(countriesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load countries: %v\n", err)
		return 1
	}
	cities, skipped, err := reference.LoadCitiesGeoNames(citiesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cities: %v\n", err)
		return 1
	}
	ref := reference.New(countries, cities)

	phases := []*phase{
		validateCountries(countries),
		validateCities(cities, skipped),
		validateCityIndex(ref),
	}
	if csvPath != "" {
		phases = append(phases, validatePipeline(csvPath, ref))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d countries, %d cities (%d rows skipped)\n", len(countries), len(cities), skipped)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Country table ──
// Every country has a name and well-formed rings with in-range coordinates.

func validateCountries(countries []domain.CountryPolygon) *phase {
	p := &phase{name: "Phase 1: Country Table"}
	seen := make(map[string]int, len(countries))

	for i, c := range countries {
		if c.Name == "" {
			p.errorf("country %d: empty name", i)
		}
		if prev, ok := seen[c.Name]; ok && c.Name != "" {
			p.errorf("country %d: duplicate name %q (first at %d)", i, c.Name, prev)
		} else {
			seen[c.Name] = i
		}
		if c.Continent == "" {
			p.errorf("country %q: empty continent", c.Name)
		}
		for j, poly := range polygons(c.Boundary) {
			for k, ring := range poly {
				checkRing(p, fmt.Sprintf("country %q polygon %d ring %d", c.Name, j, k), ring)
			}
		}
	}
	return p
}

func polygons(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		return v
	default:
		return nil
	}
}

func checkRing(p *phase, label string, ring orb.Ring) {
	if len(ring) < 4 {
		p.errorf("%s: %d vertices, need at least 4", label, len(ring))
		return
	}
	if !ring.Closed() {
		p.errorf("%s: ring is not closed", label)
	}
	for _, pt := range ring {
		if !validCoordinate(pt[0], pt[1]) {
			p.errorf("%s: coordinate out of range (%v, %v)", label, pt[0], pt[1])
			return
		}
	}
}

func validCoordinate(lon, lat float64) bool {
	return !math.IsNaN(lon) && !math.IsNaN(lat) &&
		lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// ── Phase 2: City table ──
// Every city has a name and projectable coordinates.

func validateCities(cities []domain.CityPoint, skipped int) *phase {
	p := &phase{name: "Phase 2: City Table"}
	if skipped > 0 {
		p.errorf("%d malformed rows were skipped while loading", skipped)
	}
	for i, c := range cities {
		if c.Name == "" {
			p.errorf("city %d: empty name", i)
		}
		if _, err := spatial.ToPlanar(c.Longitude, c.Latitude); err != nil {
			p.errorf("city %q: %v", c.Name, err)
		}
	}
	return p
}

// ── Phase 3: City index parity ──
// The grid index returns a city as close as the one a linear scan finds.

func validateCityIndex(ref *reference.Datasets) *phase {
	p := &phase{name: "Phase 3: City Index Parity"}
	cities := ref.Cities()
	step := 1
	if len(cities) > citySample {
		step = len(cities) / citySample
	}

	for i := 0; i < len(cities); i += step {
		probe := ref.CityPlanar(i)
		// Offset the probe so it falls between cities.
		probe.X += 1234.5
		probe.Y -= 987.6

		idx, ok := ref.CityIndex().Nearest(probe, enrich.DefaultMaxCityDistance)
		want, wantOK := enrich.AttributeNearestCity(probe, cities, enrich.DefaultMaxCityDistance)
		if ok != wantOK {
			p.errorf("city %q: index found=%v, scan found=%v", cities[i].Name, ok, wantOK)
			continue
		}
		if !ok {
			continue
		}
		got := ref.CityPlanar(idx)
		wantPlanar, err := spatial.ToPlanar(want.Longitude, want.Latitude)
		if err != nil {
			p.errorf("city %q: %v", want.Name, err)
			continue
		}
		if spatial.Distance(probe, got) != spatial.Distance(probe, wantPlanar) {
			p.errorf("near %q: index chose %q, scan chose %q", cities[i].Name, cities[idx].Name, want.Name)
		}
	}
	return p
}

// ── Phase 4: Pipeline result ──
// Runs the pipeline over a FIRMS file and checks the result's guarantees.

func validatePipeline(csvPath string, ref *reference.Datasets) *phase {
	p := &phase{name: "Phase 4: Pipeline Result"}

	f, err := os.Open(csvPath)
	if err != nil {
		p.errorf("open %s: %v", csvPath, err)
		return p
	}
	defer f.Close()

	points, err := firms.ParseCSV(f)
	if err != nil {
		p.errorf("parse %s: %v", csvPath, err)
		return p
	}

	result, err := pipeline.Run(points, ref, pipeline.DefaultOptions())
	if err != nil {
		p.errorf("run pipeline: %v", err)
		return p
	}

	if len(result.FirePoints) != len(points) {
		p.errorf("fire points: got %d, want %d", len(result.FirePoints), len(points))
	}
	sizes := make(map[int]int)
	for i, fp := range result.FirePoints {
		if fp.Country == "" || fp.Continent == "" || fp.City == "" || fp.Location == "" {
			p.errorf("fire point %d: empty attribution label", i)
		}
		if fp.Cluster != domain.NoiseCluster {
			sizes[fp.Cluster]++
		}
	}
	for _, a := range result.FireAreas {
		if a.PointCount < 3 {
			p.errorf("fire area %s: %d points, need at least 3", a.ID, a.PointCount)
		}
		if a.Country == "" {
			p.errorf("fire area %s: empty country", a.ID)
		}
		if a.AreaSqKm < 0 || math.IsNaN(a.AreaSqKm) {
			p.errorf("fire area %s: invalid area %v", a.ID, a.AreaSqKm)
		}
	}
	large := 0
	for _, n := range sizes {
		if n >= 3 {
			large++
		}
	}
	if large != len(result.FireAreas) {
		p.errorf("fire areas: got %d, want one per cluster of 3 or more (%d)", len(result.FireAreas), large)
	}

	fmt.Printf("Pipeline: %d points, %d areas, %d noise\n", len(result.FirePoints), len(result.FireAreas), result.NoiseCount())
	return p
}
