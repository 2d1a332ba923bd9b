package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mr1hm/go-quake-map/internal/models"
)

// FetchUSGS downloads a USGS summary GeoJSON feed and decodes it into quakes.
func FetchUSGS(ctx context.Context, url string) ([]*models.Earthquake, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	return DecodeQuakes(resp.Body, time.Now())
}

// DecodeQuakes reads a GeoJSON FeatureCollection of quake points. Both the USGS
// property names (mag, time, depth as the third coordinate) and this service's
// own (magnitude, depth, age) are accepted. Features that fail validation are
// logged and skipped.
func DecodeQuakes(r io.Reader, now time.Time) ([]*models.Earthquake, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("error decoding feature collection: %w", err)
	}

	quakes := make([]*models.Earthquake, 0, len(fc.Features))
	for _, f := range fc.Features {
		q, err := quakeFromFeature(f, now)
		if err != nil {
			slog.Warn("skipping invalid quake feature", "id", f.ID, "error", err)
			continue
		}
		quakes = append(quakes, q)
	}
	return quakes, nil
}

func quakeFromFeature(f *geojson.Feature, now time.Time) (*models.Earthquake, error) {
	pt, ok := f.Geometry.(*geom.Point)
	if !ok {
		return nil, fmt.Errorf("feature %q: expected Point geometry, got %T", f.ID, f.Geometry)
	}

	props := make(map[string]any, len(f.Properties)+3)
	for k, v := range f.Properties {
		props[k] = v
	}
	if _, ok := props[models.PropMagnitude]; !ok {
		if mag, ok := props["mag"]; ok {
			props[models.PropMagnitude] = mag
		}
	}
	if _, ok := props[models.PropDepth]; !ok && pt.Layout().ZIndex() != -1 {
		props[models.PropDepth] = pt.Z()
	}

	var ts time.Time
	if ms, ok := props["time"].(float64); ok {
		ts = time.UnixMilli(int64(ms))
		if _, ok := props[models.PropAge]; !ok {
			props[models.PropAge] = models.AgeAt(ts, now).String()
		}
	}

	q, err := models.NewEarthquake(models.Feature{
		ID:         f.ID,
		Location:   models.Location{Latitude: pt.Y(), Longitude: pt.X()},
		Properties: props,
	})
	if err != nil {
		return nil, err
	}
	q.Timestamp = ts
	return q, nil
}
