package domain

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// NoiseCluster is the cluster id of a point that belongs to no dense group.
const NoiseCluster = -1

// Attribution defaults applied when no reference feature matches.
const (
	DefaultCountry   = "In Ocean"
	DefaultContinent = "Ocean"
	DefaultCity      = "Remote Area"
	UnknownCountry   = "Unknown"
)

// FirePoint is one detected hotspot as parsed from the FIRMS CSV.
// Float attributes are NaN when the source column was empty.
type FirePoint struct {
	Longitude  float64
	Latitude   float64
	Brightness float64
	Scan       float64
	Track      float64
	BrightT31  float64
	FRP        float64
	Confidence string
	AcqDate    string
	AcqTime    string
	Satellite  string
	Instrument string
	Version    string
	DayNight   string
}

// Batch is a set of fire points fetched together.
type Batch struct {
	Points    []FirePoint
	FetchedAt time.Time
	Source    string
}

// CountryPolygon is a row of the static country table.
// Boundary is an orb.Polygon or orb.MultiPolygon in WGS84.
type CountryPolygon struct {
	Name      string
	Continent string
	Boundary  orb.Geometry
}

// CityPoint is a row of the static city table.
type CityPoint struct {
	Name      string
	Longitude float64
	Latitude  float64
}

// EnrichedFirePoint is a FirePoint with its attribution and cluster label.
type EnrichedFirePoint struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Brightness *float64 `json:"brightness"`
	Scan       *float64 `json:"scan"`
	Track      *float64 `json:"track"`
	AcqDate    string   `json:"acq_date"`
	AcqTime    string   `json:"acq_time"`
	Satellite  string   `json:"satellite"`
	Instrument string   `json:"instrument"`
	Confidence string   `json:"confidence"`
	Version    string   `json:"version"`
	BrightT31  *float64 `json:"bright_t31"`
	FRP        *float64 `json:"frp"`
	DayNight   string   `json:"daynight"`

	Country   string `json:"country"`
	Continent string `json:"continent"`
	City      string `json:"city"`
	Location  string `json:"location"`
	Cluster   int    `json:"cluster"`
}

// NewEnrichedFirePoint copies the pass-through fields of p, normalizes missing
// floats to nil and applies the unmatched defaults. Attribution overwrites the
// defaults later.
func NewEnrichedFirePoint(p FirePoint) EnrichedFirePoint {
	return EnrichedFirePoint{
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Brightness: OptionalFloat(p.Brightness),
		Scan:       OptionalFloat(p.Scan),
		Track:      OptionalFloat(p.Track),
		AcqDate:    p.AcqDate,
		AcqTime:    p.AcqTime,
		Satellite:  p.Satellite,
		Instrument: p.Instrument,
		Confidence: p.Confidence,
		Version:    p.Version,
		BrightT31:  OptionalFloat(p.BrightT31),
		FRP:        OptionalFloat(p.FRP),
		DayNight:   p.DayNight,

		Country:   DefaultCountry,
		Continent: DefaultContinent,
		City:      DefaultCity,
		Location:  DefaultCountry,
		Cluster:   NoiseCluster,
	}
}

// OptionalFloat returns nil for NaN and ±Inf, otherwise a pointer to v.
func OptionalFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
