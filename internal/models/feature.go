package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Property names read from a quake feature.
const (
	PropMagnitude = "magnitude"
	PropDepth     = "depth"
	PropTitle     = "title"
	PropAge       = "age"
	PropCountry   = "country"
)

var (
	ErrMissingProperty = errors.New("missing property")
	ErrInvalidProperty = errors.New("invalid property")
)

// PropertyError reports a required feature property that is absent or not
// usable as the expected type. Numbers may arrive as JSON numbers or numeric strings.
type PropertyError struct {
	FeatureID string
	Property  string
	Value     any
	Err       error // ErrMissingProperty or ErrInvalidProperty
}

func (e *PropertyError) Error() string {
	if errors.Is(e.Err, ErrMissingProperty) {
		return fmt.Sprintf("feature %q: %s: %s", e.FeatureID, e.Err, e.Property)
	}
	return fmt.Sprintf("feature %q: %s: %s=%v (%T)", e.FeatureID, e.Err, e.Property, e.Value, e.Value)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// Feature is a point with a loosely typed property bag, as decoded from GeoJSON.
type Feature struct {
	ID         string
	Location   Location
	Properties map[string]any
}

// NewEarthquake validates the feature's properties and builds an Earthquake.
// magnitude, depth, title and age are required.
func NewEarthquake(f Feature) (*Earthquake, error) {
	mag, err := f.Float(PropMagnitude)
	if err != nil {
		return nil, err
	}
	depth, err := f.Float(PropDepth)
	if err != nil {
		return nil, err
	}
	title, err := f.Text(PropTitle)
	if err != nil {
		return nil, err
	}
	ageStr, err := f.Text(PropAge)
	if err != nil {
		return nil, err
	}
	age, err := ParseAge(ageStr)
	if err != nil {
		return nil, &PropertyError{FeatureID: f.ID, Property: PropAge, Value: ageStr, Err: ErrInvalidProperty}
	}

	country, _ := f.Properties[PropCountry].(string)

	return &Earthquake{
		ID:        f.ID,
		Title:     title,
		Magnitude: mag,
		Depth:     depth,
		Age:       age,
		Location:  f.Location,
		Country:   country,
	}, nil
}

func (f Feature) Float(key string) (float64, error) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return 0, &PropertyError{FeatureID: f.ID, Property: key, Err: ErrMissingProperty}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		if x, err := n.Float64(); err == nil {
			return x, nil
		}
	case string:
		if x, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return x, nil
		}
	}
	return 0, &PropertyError{FeatureID: f.ID, Property: key, Value: v, Err: ErrInvalidProperty}
}

func (f Feature) Text(key string) (string, error) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return "", &PropertyError{FeatureID: f.ID, Property: key, Err: ErrMissingProperty}
	}
	s, ok := v.(string)
	if !ok {
		return "", &PropertyError{FeatureID: f.ID, Property: key, Value: v, Err: ErrInvalidProperty}
	}
	return s, nil
}
