package ingestion

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mr1hm/go-quake-map/internal/geo"
	"github.com/mr1hm/go-quake-map/internal/models"
)

func LoadQuakes(path string) ([]*models.Earthquake, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening quakes file: %w", err)
	}
	defer f.Close()

	return DecodeQuakes(f, time.Now())
}

func LoadLandmass(path string) (*geo.Landmass, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	lm, err := geo.NewLandmass(fc)
	if err != nil {
		return nil, fmt.Errorf("error building landmass from %s: %w", path, err)
	}
	slog.Info("landmass loaded", "path", path, "countries", len(lm.Countries()))
	return lm, nil
}

// LoadCities reads city points with name, country and population (millions) properties.
func LoadCities(path string) ([]models.City, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	cities := make([]models.City, 0, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok {
			slog.Warn("skipping city without point geometry", "id", f.ID)
			continue
		}
		c := models.City{
			Location: models.Location{Latitude: pt.Y(), Longitude: pt.X()},
		}
		c.Name, _ = f.Properties["name"].(string)
		c.Country, _ = f.Properties["country"].(string)
		switch p := f.Properties["population"].(type) {
		case float64:
			c.Population = p
		case string:
			pop, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				slog.Warn("ignoring unparseable city population", "city", c.Name, "population", p)
				break
			}
			c.Population = pop
		}
		cities = append(cities, c)
	}
	slog.Info("cities loaded", "path", path, "count", len(cities))
	return cities, nil
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return &fc, nil
}
