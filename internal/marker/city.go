package marker

import (
	"fmt"
	"image/color"

	"github.com/mr1hm/go-quake-map/internal/models"
)

const triangleSize = 5.0

var cityFill = color.RGBA{R: 150, G: 30, B: 30, A: 255}

type CityMarker struct {
	city     models.City
	selected bool
}

var _ Marker = (*CityMarker)(nil)

func NewCityMarker(c models.City) *CityMarker {
	return &CityMarker{city: c}
}

func (m *CityMarker) City() models.City { return m.city }
func (m *CityMarker) Location() models.Location { return m.city.Location }
func (m *CityMarker) Selected() bool { return m.selected }
func (m *CityMarker) SetSelected(selected bool) { m.selected = selected }

// Draw renders an upward triangle centred on (x, y).
func (m *CityMarker) Draw(g Graphics, _ Projector, x, y float64) {
	g.PushStyle()
	defer g.PopStyle()

	g.Fill(cityFill)
	g.NoStroke()
	g.Triangle(x, y-triangleSize, x-triangleSize, y+triangleSize, x+triangleSize, y+triangleSize)
}

func (m *CityMarker) ShowTitle(g Graphics, x, y float64) {
	title := m.city.Name
	if m.city.Country != "" {
		title += ", " + m.city.Country
	}
	if m.city.Population > 0 {
		title += fmt.Sprintf(" (pop. %.1fM)", m.city.Population)
	}
	drawTitleBox(g, title, x, y)
}
