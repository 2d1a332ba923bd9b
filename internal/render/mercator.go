package render

import (
	"math"

	"github.com/mr1hm/go-quake-map/internal/marker"
	"github.com/mr1hm/go-quake-map/internal/models"
)

const (
	tileSize = 256.0
	// Web Mercator is undefined at the poles.
	maxLatitude = 85.05112878
)

// Mercator is a Web Mercator projector centred on a location at a fixed zoom.
type Mercator struct {
	Center models.Location
	Zoom   float64
	Width  int
	Height int
}

var _ marker.Projector = Mercator{}

func (m Mercator) worldSize() float64 {
	return tileSize * math.Pow(2, m.Zoom)
}

func (m Mercator) world(loc models.Location) (float64, float64) {
	size := m.worldSize()
	lat := math.Max(-maxLatitude, math.Min(maxLatitude, loc.Latitude))
	phi := lat * math.Pi / 180

	x := (loc.Longitude + 180) / 360 * size
	y := (1 - math.Log(math.Tan(phi)+1/math.Cos(phi))/math.Pi) / 2 * size
	return x, y
}

func (m Mercator) ScreenPosition(loc models.Location) marker.ScreenPoint {
	cx, cy := m.world(m.Center)
	x, y := m.world(loc)
	return marker.ScreenPoint{
		X: x - cx + float64(m.Width)/2,
		Y: y - cy + float64(m.Height)/2,
	}
}

// Visible reports whether p, padded by margin pixels, falls on screen.
func (m Mercator) Visible(p marker.ScreenPoint, margin float64) bool {
	return p.X >= -margin && p.Y >= -margin &&
		p.X <= float64(m.Width)+margin && p.Y <= float64(m.Height)+margin
}
