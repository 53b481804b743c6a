// Package firms fetches active fire detections from the NASA FIRMS area API.
package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// Client implements pipeline.Fetcher against the FIRMS area CSV endpoint.
type Client struct {
	baseURL    string
	mapKey     string
	source     string
	area       string
	days       int
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a FIRMS client for one source, area and day range.
func NewClient(baseURL, mapKey, source, area string, days int, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		mapKey:  mapKey,
		source:  source,
		area:    area,
		days:    days,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// Fetch downloads and parses the current detections.
func (c *Client) Fetch(ctx context.Context) (domain.Batch, error) {
	u := fmt.Sprintf("%s/api/area/csv/%s/%s/%s/%d",
		c.baseURL,
		url.PathEscape(c.mapKey),
		url.PathEscape(c.source),
		url.PathEscape(c.area),
		c.days,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("create request: %w", err)
	}

	fetchedAt := c.clock.Now().UTC()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("firms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Batch{}, fmt.Errorf("firms API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	points, err := ParseCSV(resp.Body)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("decode firms csv: %w", err)
	}

	c.logger.Debug("firms batch fetched", "source", c.source, "area", c.area, "days", c.days, "points", len(points))
	return domain.Batch{Points: points, FetchedAt: fetchedAt, Source: c.source}, nil
}

// Column aliases. VIIRS products report bright_ti4/bright_ti5 in place of the
// MODIS brightness/bright_t31 columns.
var columnAliases = map[string][]string{
	"latitude":   {"latitude"},
	"longitude":  {"longitude"},
	"brightness": {"brightness", "bright_ti4"},
	"bright_t31": {"bright_t31", "bright_ti5"},
	"scan":       {"scan"},
	"track":      {"track"},
	"acq_date":   {"acq_date"},
	"acq_time":   {"acq_time"},
	"satellite":  {"satellite"},
	"instrument": {"instrument"},
	"confidence": {"confidence"},
	"version":    {"version"},
	"frp":        {"frp"},
	"daynight":   {"daynight"},
}

// ParseCSV decodes a FIRMS CSV body into fire points. Columns are matched by
// header name. Missing or unparsable numeric values become NaN; the pipeline
// rejects a batch whose coordinates are NaN. An empty body yields no points.
func ParseCSV(r io.Reader) ([]domain.FirePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.FirePoint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := resolveColumns(header)
	if _, ok := cols["latitude"]; !ok {
		return nil, errors.New("missing latitude column")
	}
	if _, ok := cols["longitude"]; !ok {
		return nil, errors.New("missing longitude column")
	}

	points := []domain.FirePoint{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(points)+2, err)
		}
		row := record{fields: rec, cols: cols}
		points = append(points, domain.FirePoint{
			Latitude:   row.float("latitude"),
			Longitude:  row.float("longitude"),
			Brightness: row.float("brightness"),
			Scan:       row.float("scan"),
			Track:      row.float("track"),
			BrightT31:  row.float("bright_t31"),
			FRP:        row.float("frp"),
			Confidence: row.str("confidence"),
			AcqDate:    row.str("acq_date"),
			AcqTime:    row.str("acq_time"),
			Satellite:  row.str("satellite"),
			Instrument: row.str("instrument"),
			Version:    row.str("version"),
			DayNight:   row.str("daynight"),
		})
	}
	return points, nil
}

func resolveColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	cols := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

type record struct {
	fields []string
	cols   map[string]int
}

func (r record) str(field string) string {
	i, ok := r.cols[field]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) float(field string) float64 {
	s := r.str(field)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
