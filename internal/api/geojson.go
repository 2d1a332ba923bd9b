package api

import (
	"time"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toFeature uses the same property names the quake loaders accept, so the
// output of /api/quakes can be fed back into quake-render.
func toFeature(q *models.Earthquake) Feature {
	props := map[string]any{
		models.PropMagnitude: q.Magnitude,
		models.PropDepth:     q.Depth,
		models.PropTitle:     q.Title,
		models.PropAge:       q.Age.String(),
		"depth_class":        q.DepthClass().String(),
		"radius":             q.Radius(),
		"threat_radius_km":   q.ThreatRadiusKm(),
	}
	if q.Country != "" {
		props[models.PropCountry] = q.Country
	}
	if !q.Timestamp.IsZero() {
		props["timestamp"] = q.Timestamp.UTC().Format(time.RFC3339)
	}

	return Feature{
		Type: "Feature",
		ID:   q.ID,
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{q.Location.Longitude, q.Location.Latitude, q.Depth},
		},
		Properties: props,
	}
}

func toGeoJSON(quakes []*models.Earthquake) FeatureCollection {
	features := make([]Feature, 0, len(quakes))
	for _, q := range quakes {
		features = append(features, toFeature(q))
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
