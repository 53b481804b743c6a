// Command enrich runs the fire point pipeline once over a FIRMS CSV file and
// writes the resulting fire areas and enriched points as JSON.
//
// Usage:
//
//	go run ./cmd/enrich \
//	  -csv data/MODIS_C6_1_Global_24h.csv \
//	  -countries data/ne_110m_admin_0_countries.geojson \
//	  -cities data/cities1000.txt \
//	  -out fires.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/firemap-service/internal/adapter/firms"
	"github.com/couchcryptid/firemap-service/internal/cluster"
	"github.com/couchcryptid/firemap-service/internal/domain"
	"github.com/couchcryptid/firemap-service/internal/enrich"
	"github.com/couchcryptid/firemap-service/internal/pipeline"
	"github.com/couchcryptid/firemap-service/internal/reference"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "FIRMS CSV file to process")
	countriesPath := flag.String("countries", "", "country boundaries GeoJSON")
	citiesPath := flag.String("cities", "", "GeoNames cities dump")
	outPath := flag.String("out", "", "output JSON path (default stdout)")
	eps := flag.Float64("eps", cluster.DefaultEps, "DBSCAN neighborhood radius in meters")
	minSamples := flag.Int("min-samples", cluster.DefaultMinSamples, "DBSCAN core point threshold")
	maxCity := flag.Float64("max-city-distance", enrich.DefaultMaxCityDistance, "nearest city cutoff in meters")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv")
	}

	logger := sharedobs.NewLogger(*logLevel, "text")

	points, err := readPoints(*csvPath)
	if err != nil {
		return err
	}
	logger.Info("fire points read", "path", *csvPath, "points", len(points))

	ref, err := reference.Load(context.Background(), reference.FileLoader{
		CountriesPath: *countriesPath,
		CitiesPath:    *citiesPath,
		Logger:        logger,
	}, logger)
	if err != nil {
		logger.Warn("reference data degraded", "error", err)
	}

	opts := pipeline.DefaultOptions()
	opts.Eps = *eps
	opts.MinSamples = *minSamples
	opts.MaxCityDistance = *maxCity

	result, err := pipeline.Run(points, ref, opts)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	logger.Info("pipeline complete",
		"fire_areas", len(result.FireAreas),
		"fire_points", len(result.FirePoints),
		"noise", result.NoiseCount(),
	)

	if *outPath == "" {
		return writeResult(os.Stdout, result)
	}
	return writeFile(*outPath, result)
}

// writeFile writes result to path. A failed close is reported, since it can
// mean buffered output never reached the disk.
func writeFile(path string, result domain.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeResult(f, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeResult(w io.Writer, result domain.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func readPoints(path string) ([]domain.FirePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	points, err := firms.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return points, nil
}
