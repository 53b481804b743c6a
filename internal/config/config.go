package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// FIRMS area API.
	FIRMSBaseURL string
	FIRMSMapKey  string
	FIRMSSource  string
	FIRMSArea    string
	FIRMSDays    int
	FIRMSTimeout time.Duration

	RefreshSchedule   string
	SnapshotCacheSize int

	// Reference data. When ReferenceDatabaseURL is set the tables load from
	// Postgres and the file paths are ignored.
	CountriesPath        string
	CitiesPath           string
	ReferenceDatabaseURL string

	// Pipeline parameters, in planar meters.
	MaxCityDistance   float64
	ClusterEps        float64
	ClusterMinSamples int

	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAreasTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	firmsTimeout, err := parsePositiveDuration("FIRMS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	firmsDays, err := parseIntInRange("FIRMS_DAYS", 1, 1, 10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntInRange("SNAPSHOT_CACHE_SIZE", 4, 1, 1000)
	if err != nil {
		return nil, err
	}
	maxCityDistance, err := parsePositiveFloat("MAX_CITY_DISTANCE_M", 200000)
	if err != nil {
		return nil, err
	}
	eps, err := parsePositiveFloat("CLUSTER_EPS_M", 10000)
	if err != nil {
		return nil, err
	}
	minSamples, err := parseIntInRange("CLUSTER_MIN_SAMPLES", 5, 1, 10000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FIRMSBaseURL: sharedcfg.EnvOrDefault("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov"),
		FIRMSMapKey:  os.Getenv("FIRMS_MAP_KEY"),
		FIRMSSource:  sharedcfg.EnvOrDefault("FIRMS_SOURCE", "MODIS_NRT"),
		FIRMSArea:    sharedcfg.EnvOrDefault("FIRMS_AREA", "world"),
		FIRMSDays:    firmsDays,
		FIRMSTimeout: firmsTimeout,

		RefreshSchedule:   sharedcfg.EnvOrDefault("REFRESH_SCHEDULE", "@every 10m"),
		SnapshotCacheSize: cacheSize,

		CountriesPath:        sharedcfg.EnvOrDefault("COUNTRIES_PATH", "data/ne_110m_admin_0_countries.geojson"),
		CitiesPath:           sharedcfg.EnvOrDefault("CITIES_PATH", "data/cities1000.txt"),
		ReferenceDatabaseURL: os.Getenv("REFERENCE_DATABASE_URL"),

		MaxCityDistance:   maxCityDistance,
		ClusterEps:        eps,
		ClusterMinSamples: minSamples,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAreasTopic: sharedcfg.EnvOrDefault("KAFKA_AREAS_TOPIC", "fire-areas"),
	}

	if cfg.FIRMSMapKey == "" {
		return nil, errors.New("FIRMS_MAP_KEY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaAreasTopic == "" {
		return nil, errors.New("KAFKA_AREAS_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return v, nil
}
