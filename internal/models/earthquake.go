package models

import (
	"math"
	"time"
)

// Depth thresholds in kilometres separating shallow, intermediate and deep quakes.
const (
	ThresholdIntermediate = 70.0
	ThresholdDeep         = 300.0
)

const radiusPerMagnitude = 1.75

type DepthClass int

const (
	DepthShallow DepthClass = iota
	DepthIntermediate
	DepthDeep
)

func (c DepthClass) String() string {
	switch c {
	case DepthIntermediate:
		return "intermediate"
	case DepthDeep:
		return "deep"
	default:
		return "shallow"
	}
}

// ClassifyDepth buckets a hypocentre depth (km) using the fixed 70/300 km thresholds.
func ClassifyDepth(depth float64) DepthClass {
	switch {
	case depth < ThresholdIntermediate:
		return DepthShallow
	case depth < ThresholdDeep:
		return DepthIntermediate
	default:
		return DepthDeep
	}
}

type Location struct {
	Latitude  float64
	Longitude float64
}

type Earthquake struct {
	ID        string
	Title     string
	Magnitude float64
	Depth     float64 // km
	Age       Age
	Location  Location
	Country   string    // empty for ocean quakes or when unknown
	Timestamp time.Time // zero when the source only supplied an age bucket
}

// Radius is the on-screen marker radius in pixels.
func (e *Earthquake) Radius() float64 {
	return radiusPerMagnitude * e.Magnitude
}

func (e *Earthquake) DepthClass() DepthClass {
	return ClassifyDepth(e.Depth)
}

func (e *Earthquake) ThreatRadiusKm() float64 {
	return ThreatRadiusKm(e.Magnitude)
}

// ThreatRadiusKm is an illustrative distance scaled from magnitude. It is not a
// physical model of shaking or damage.
func ThreatRadiusKm(magnitude float64) float64 {
	miles := 20 * math.Pow(1.8, 2*magnitude-5)
	return miles * 1.6
}

// Compare orders quakes by descending magnitude. Equal magnitudes compare equal.
func Compare(a, b *Earthquake) int {
	switch {
	case a.Magnitude > b.Magnitude:
		return -1
	case a.Magnitude < b.Magnitude:
		return 1
	default:
		return 0
	}
}

// IsRecent reports whether the quake happened within the last day.
func (e *Earthquake) IsRecent() bool {
	return e.Age == AgePastHour || e.Age == AgePastDay
}
