package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mr1hm/go-quake-map/internal/models"
)

// A trimmed USGS summary feed: one valid quake, one with a null magnitude.
const usgsFeed = `{
  "type": "FeatureCollection",
  "metadata": {"generated": 1704888000000, "title": "USGS All Earthquakes, Past Hour"},
  "features": [
    {
      "type": "Feature",
      "id": "us7000abcd",
      "properties": {"mag": 6.1, "place": "10 km S of Somewhere", "time": 1704886200000, "title": "M 6.1 - 10 km S of Somewhere", "tsunami": 0},
      "geometry": {"type": "Point", "coordinates": [142.5, 38.1, 35.2]}
    },
    {
      "type": "Feature",
      "id": "ci0000null",
      "properties": {"mag": null, "time": 1704886200000, "title": "unknown"},
      "geometry": {"type": "Point", "coordinates": [-117.1, 33.9, 5.0]}
    }
  ]
}`

func TestDecodeQuakes_USGSFeed(t *testing.T) {
	now := time.UnixMilli(1704888000000)

	quakes, err := DecodeQuakes(strings.NewReader(usgsFeed), now)
	if err != nil {
		t.Fatalf("DecodeQuakes failed: %v", err)
	}
	if len(quakes) != 1 {
		t.Fatalf("expected 1 valid quake, got %d", len(quakes))
	}

	q := quakes[0]
	if q.ID != "us7000abcd" || q.Magnitude != 6.1 || q.Depth != 35.2 {
		t.Errorf("unexpected quake: %+v", q)
	}
	if q.Location.Latitude != 38.1 || q.Location.Longitude != 142.5 {
		t.Errorf("unexpected location: %+v", q.Location)
	}
	// 30 minutes before the feed was generated
	if q.Age != models.AgePastHour {
		t.Errorf("expected Past Hour, got %s", q.Age)
	}
	if !q.Timestamp.Equal(time.UnixMilli(1704886200000)) {
		t.Errorf("unexpected timestamp %v", q.Timestamp)
	}
}

func TestDecodeQuakes_OwnPropertyNames(t *testing.T) {
	raw := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"x1","properties":{"magnitude":4.4,"depth":310,"title":"deep one","age":"Past Week"},
		 "geometry":{"type":"Point","coordinates":[120,-5]}},
		{"type":"Feature","id":"x2","properties":{"magnitude":4.4,"title":"no depth","age":"Older"},
		 "geometry":{"type":"Point","coordinates":[120,-5]}}
	]}`

	quakes, err := DecodeQuakes(strings.NewReader(raw), time.Now())
	if err != nil {
		t.Fatalf("DecodeQuakes failed: %v", err)
	}
	if len(quakes) != 1 {
		t.Fatalf("expected 1 valid quake, got %d", len(quakes))
	}
	if quakes[0].DepthClass() != models.DepthDeep || quakes[0].Age != models.AgePastWeek {
		t.Errorf("unexpected quake: %+v", quakes[0])
	}
}

func TestDecodeQuakes_InvalidJSON(t *testing.T) {
	if _, err := DecodeQuakes(strings.NewReader("{not json"), time.Now()); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestFetchUSGS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(usgsFeed))
	}))
	defer srv.Close()

	quakes, err := FetchUSGS(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchUSGS failed: %v", err)
	}
	if len(quakes) != 1 {
		t.Errorf("expected 1 quake, got %d", len(quakes))
	}
}

func TestFetchUSGS_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := FetchUSGS(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 503")
	}
}

func TestLoadCitiesAndLandmass(t *testing.T) {
	dir := t.TempDir()

	cities := filepath.Join(dir, "cities.geojson")
	os.WriteFile(cities, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"Tokyo","country":"Japan","population":"37.4"},"geometry":{"type":"Point","coordinates":[139.69,35.68]}},
		{"type":"Feature","properties":{"name":"Lima","country":"Peru","population":10.7},"geometry":{"type":"Point","coordinates":[-77.04,-12.05]}},
		{"type":"Feature","properties":{"name":"Nowhere","country":"X","population":"lots"},"geometry":{"type":"Point","coordinates":[0,0]}}
	]}`), 0o644)

	got, err := LoadCities(cities)
	if err != nil {
		t.Fatalf("LoadCities failed: %v", err)
	}
	if len(got) != 3 || got[0].Population != 37.4 || got[1].Name != "Lima" {
		t.Errorf("unexpected cities: %+v", got)
	}
	// an unparseable population keeps the city with no population
	if len(got) == 3 && (got[2].Name != "Nowhere" || got[2].Population != 0) {
		t.Errorf("unexpected city: %+v", got[2])
	}

	countries := filepath.Join(dir, "countries.geojson")
	os.WriteFile(countries, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"Japan"},"geometry":{"type":"Polygon","coordinates":[[[129,30],[146,30],[146,46],[129,46],[129,30]]]}}
	]}`), 0o644)

	lm, err := LoadLandmass(countries)
	if err != nil {
		t.Fatalf("LoadLandmass failed: %v", err)
	}
	if c, ok := lm.Locate(models.Location{Latitude: 35.68, Longitude: 139.69}); !ok || c != "Japan" {
		t.Errorf("expected Tokyo to be in Japan, got %q %v", c, ok)
	}

	if _, err := LoadLandmass(filepath.Join(dir, "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}
