package marker

import (
	"image/color"
	"math"

	"github.com/mr1hm/go-quake-map/internal/geo"
	"github.com/mr1hm/go-quake-map/internal/models"
)

const (
	recentXBuffer  = 2.0
	recentXWeight  = 2.0
	titleOffsetY   = 15.0
	titlePadding   = 3.0
	titleBoxHeight = 18.0
)

var (
	black      = color.RGBA{A: 255}
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	titleFrame = color.RGBA{R: 110, G: 110, B: 110, A: 255}
)

// Shape draws the body of a quake marker. Land and ocean quakes use different shapes.
type Shape interface {
	drawShape(g Graphics, x, y, radius float64)
	Name() string
}

// LandShape draws a circle.
type LandShape struct{}

func (LandShape) Name() string { return "land" }

func (LandShape) drawShape(g Graphics, x, y, radius float64) {
	g.Ellipse(x, y, 2*radius, 2*radius)
}

// OceanShape draws a square.
type OceanShape struct{}

func (OceanShape) Name() string { return "ocean" }

func (OceanShape) drawShape(g Graphics, x, y, radius float64) {
	g.Rect(x-radius, y-radius, 2*radius, 2*radius)
}

type QuakeMarker struct {
	quake      *models.Earthquake
	shape      Shape
	palette    Palette
	radius     float64
	showThreat bool
	selected   bool
}

var _ Marker = (*QuakeMarker)(nil)

func NewQuakeMarker(q *models.Earthquake, shape Shape, palette Palette) *QuakeMarker {
	return &QuakeMarker{
		quake:   q,
		shape:   shape,
		palette: palette,
		radius:  q.Radius(),
	}
}

// NewLandQuakeMarker and NewOceanQuakeMarker use the default palette.
func NewLandQuakeMarker(q *models.Earthquake) *QuakeMarker {
	return NewQuakeMarker(q, LandShape{}, DefaultPalette)
}

func NewOceanQuakeMarker(q *models.Earthquake) *QuakeMarker {
	return NewQuakeMarker(q, OceanShape{}, DefaultPalette)
}

func (m *QuakeMarker) Quake() *models.Earthquake { return m.quake }
func (m *QuakeMarker) Location() models.Location { return m.quake.Location }
func (m *QuakeMarker) Radius() float64 { return m.radius }
func (m *QuakeMarker) Shape() Shape { return m.shape }
func (m *QuakeMarker) Color() color.Color { return m.palette.For(m.quake.DepthClass()) }
func (m *QuakeMarker) ShowThreat() bool { return m.showThreat }
func (m *QuakeMarker) SetShowThreat(show bool) { m.showThreat = show }
func (m *QuakeMarker) Selected() bool { return m.selected }
func (m *QuakeMarker) SetSelected(selected bool) { m.selected = selected }
func (m *QuakeMarker) Compare(o *QuakeMarker) int { return models.Compare(m.quake, o.quake) }
func (m *QuakeMarker) String() string { return m.quake.Title }

// Draw renders the marker centred on (x, y). The threat circle, when enabled, is
// drawn after the marker's own style has been popped.
func (m *QuakeMarker) Draw(g Graphics, proj Projector, x, y float64) {
	m.drawBody(g, x, y)
	if m.showThreat {
		m.DrawThreatRadius(g, proj, x, y)
	}
}

func (m *QuakeMarker) drawBody(g Graphics, x, y float64) {
	g.PushStyle()
	defer g.PopStyle()

	g.Fill(m.Color())
	g.Stroke(black)
	m.shape.drawShape(g, x, y, m.radius)

	if m.quake.IsRecent() {
		r := m.radius + recentXBuffer
		g.StrokeWeight(recentXWeight)
		g.Line(x-r, y-r, x+r, y+r)
		g.Line(x-r, y+r, x+r, y-r)
	}
}

// DrawThreatRadius draws a circle whose on-screen radius is the pixel distance
// due east covering ThreatRadiusKm. When the eastward point does not project to
// the right of the marker (for example after wrapping past the antimeridian)
// nothing is drawn.
func (m *QuakeMarker) DrawThreatRadius(g Graphics, proj Projector, x, y float64) {
	loc := m.quake.Location
	dest := geo.Destination(loc, geo.BearingEast, m.quake.ThreatRadiusKm())

	src := proj.ScreenPosition(loc)
	dst := proj.ScreenPosition(dest)
	r := dst.X - src.X
	// also rejects NaN from a degenerate projection
	if !(r > 0) || math.IsInf(r, 0) {
		return
	}

	g.PushStyle()
	defer g.PopStyle()

	g.NoFill()
	g.Stroke(white)
	g.Ellipse(x, y, 2*r, 2*r)
}

// Threatens reports whether loc lies within the quake's threat radius.
func (m *QuakeMarker) Threatens(loc models.Location) bool {
	return geo.Distance(m.quake.Location, loc) <= m.quake.ThreatRadiusKm()
}

func (m *QuakeMarker) ShowTitle(g Graphics, x, y float64) {
	drawTitleBox(g, m.quake.Title, x, y)
}

func drawTitleBox(g Graphics, title string, x, y float64) {
	g.PushStyle()
	defer g.PopStyle()

	g.Stroke(titleFrame)
	g.Fill(white)
	g.Rect(x, y+titleOffsetY, g.TextWidth(title)+2*titlePadding, titleBoxHeight)
	g.Fill(black)
	g.Text(title, x+titlePadding, y+titleOffsetY+titlePadding)
}
