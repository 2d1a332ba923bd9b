package render

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"slices"

	"github.com/twpayne/go-geom"

	"github.com/mr1hm/go-quake-map/internal/geo"
	"github.com/mr1hm/go-quake-map/internal/marker"
	"github.com/mr1hm/go-quake-map/internal/models"
)

var (
	oceanColor  = color.RGBA{R: 170, G: 211, B: 223, A: 255}
	landColor   = color.RGBA{R: 232, G: 228, B: 216, A: 255}
	borderColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	legendColor = color.RGBA{R: 255, G: 250, B: 240, A: 230}
)

type Options struct {
	Center     models.Location
	Zoom       float64
	Width      int
	Height     int
	ShowThreat bool
	SelectedID string // quake whose threat circle and title are drawn
	Legend     bool
}

// Validate rejects sizes, zooms and centres the projector cannot handle.
// Comparisons are written so that NaN fails them.
func (o Options) Validate() error {
	if o.Width < 1 || o.Height < 1 || o.Width > 4096 || o.Height > 4096 {
		return fmt.Errorf("invalid map size %dx%d", o.Width, o.Height)
	}
	if !(o.Zoom >= 0 && o.Zoom <= 18) {
		return fmt.Errorf("invalid zoom: %v", o.Zoom)
	}
	if !(o.Center.Latitude >= -90 && o.Center.Latitude <= 90) || !(o.Center.Longitude >= -180 && o.Center.Longitude <= 180) {
		return fmt.Errorf("invalid center: %v,%v", o.Center.Latitude, o.Center.Longitude)
	}
	return nil
}

// Renderer draws a map image: landmass, city markers, quake markers and a legend.
type Renderer struct {
	palette  marker.Palette
	landmass *geo.Landmass
	cities   []models.City
}

func NewRenderer(palette marker.Palette, landmass *geo.Landmass, cities []models.City) *Renderer {
	return &Renderer{
		palette:  palette,
		landmass: landmass,
		cities:   cities,
	}
}

// Markers builds quake markers ordered largest magnitude first. Quakes outside
// every known country use the ocean shape; with no landmass all are land quakes.
func (r *Renderer) Markers(quakes []*models.Earthquake, opts Options) []*marker.QuakeMarker {
	markers := make([]*marker.QuakeMarker, 0, len(quakes))
	for _, q := range quakes {
		var shape marker.Shape = marker.LandShape{}
		if r.landmass != nil {
			if _, onLand := r.landmass.Locate(q.Location); !onLand {
				shape = marker.OceanShape{}
			}
		}

		m := marker.NewQuakeMarker(q, shape, r.palette)
		if opts.ShowThreat || (opts.SelectedID != "" && q.ID == opts.SelectedID) {
			m.SetShowThreat(true)
		}
		m.SetSelected(opts.SelectedID != "" && q.ID == opts.SelectedID)
		markers = append(markers, m)
	}

	slices.SortStableFunc(markers, (*marker.QuakeMarker).Compare)
	return markers
}

// ThreatenedCities returns the cities inside m's threat radius.
func (r *Renderer) ThreatenedCities(m *marker.QuakeMarker) []models.City {
	var out []models.City
	for _, c := range r.cities {
		if m.Threatens(c.Location) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Renderer) Render(quakes []*models.Earthquake, opts Options) (*Canvas, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	canvas := NewCanvas(opts.Width, opts.Height)
	proj := Mercator{Center: opts.Center, Zoom: opts.Zoom, Width: opts.Width, Height: opts.Height}

	dc := canvas.Context()
	dc.SetColor(oceanColor)
	dc.Clear()

	r.drawLandmass(canvas, proj)

	var selected []*marker.QuakeMarker
	for _, c := range r.cities {
		m := marker.NewCityMarker(c)
		p := proj.ScreenPosition(m.Location())
		if proj.Visible(p, 0) {
			m.Draw(canvas, proj, p.X, p.Y)
		}
	}

	markers := r.Markers(quakes, opts)
	drawn := 0
	for _, m := range markers {
		p := proj.ScreenPosition(m.Location())
		if !m.ShowThreat() && !proj.Visible(p, m.Radius()) {
			continue
		}
		m.Draw(canvas, proj, p.X, p.Y)
		drawn++
		if m.Selected() {
			selected = append(selected, m)
		}
	}

	for _, m := range selected {
		p := proj.ScreenPosition(m.Location())
		m.ShowTitle(canvas, p.X, p.Y)

		for _, c := range r.ThreatenedCities(m) {
			cm := marker.NewCityMarker(c)
			if cp := proj.ScreenPosition(c.Location); proj.Visible(cp, 0) {
				cm.ShowTitle(canvas, cp.X, cp.Y)
			}
		}
	}

	if opts.Legend {
		r.drawLegend(canvas)
	}

	if canvas.Depth() != 0 {
		return nil, fmt.Errorf("unbalanced style stack: depth %d", canvas.Depth())
	}

	slog.Debug("map rendered", "quakes", len(quakes), "drawn", drawn, "zoom", opts.Zoom)
	return canvas, nil
}

func (r *Renderer) RenderPNG(w io.Writer, quakes []*models.Earthquake, opts Options) error {
	canvas, err := r.Render(quakes, opts)
	if err != nil {
		return err
	}
	if err := canvas.Context().EncodePNG(w); err != nil {
		return fmt.Errorf("error encoding png: %w", err)
	}
	return nil
}

func (r *Renderer) drawLandmass(canvas *Canvas, proj Mercator) {
	if r.landmass == nil {
		return
	}

	canvas.PushStyle()
	defer canvas.PopStyle()
	canvas.Fill(landColor)
	canvas.Stroke(borderColor)
	canvas.StrokeWeight(0.5)

	dc := canvas.Context()
	for _, c := range r.landmass.Countries() {
		for _, poly := range c.Polygons {
			for i := 0; i < poly.NumLinearRings(); i++ {
				ring := poly.LinearRing(i)
				if i > 0 {
					// holes are painted back in ocean colour
					canvas.Fill(oceanColor)
				}
				canvas.paint(func() { traceRing(dc, proj, ring) })
			}
			canvas.Fill(landColor)
		}
	}
}

type pathBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
}

func traceRing(pb pathBuilder, proj Mercator, ring *geom.LinearRing) {
	for j := 0; j < ring.NumCoords(); j++ {
		c := ring.Coord(j)
		p := proj.ScreenPosition(models.Location{Latitude: c.Y(), Longitude: c.X()})
		if j == 0 {
			pb.MoveTo(p.X, p.Y)
		} else {
			pb.LineTo(p.X, p.Y)
		}
	}
	pb.ClosePath()
}

func (r *Renderer) drawLegend(canvas *Canvas) {
	const (
		x, y   = 10.0, 10.0
		w, h   = 150.0, 170.0
		rowGap = 22.0
	)

	canvas.PushStyle()
	defer canvas.PopStyle()

	canvas.Fill(legendColor)
	canvas.Stroke(borderColor)
	canvas.Rect(x, y, w, h)

	canvas.Fill(color.Black)
	canvas.Text("Earthquake Key", x+10, y+8)

	rows := []struct {
		label string
		col   color.Color
	}{
		{"Shallow", r.palette.Shallow},
		{"Intermediate", r.palette.Intermediate},
		{"Deep", r.palette.Deep},
	}
	cy := y + 40
	for _, row := range rows {
		canvas.Fill(row.col)
		canvas.Stroke(color.Black)
		canvas.Ellipse(x+20, cy, 12, 12)
		canvas.Fill(color.Black)
		canvas.Text(row.label, x+35, cy-6)
		cy += rowGap
	}

	canvas.NoFill()
	canvas.Ellipse(x+20, cy, 12, 12)
	canvas.Fill(color.Black)
	canvas.Text("Land quake", x+35, cy-6)
	cy += rowGap

	canvas.NoFill()
	canvas.Rect(x+14, cy-6, 12, 12)
	canvas.Fill(color.Black)
	canvas.Text("Ocean quake", x+35, cy-6)
	cy += rowGap

	canvas.StrokeWeight(2)
	canvas.Line(x+13, cy-7, x+27, cy+7)
	canvas.Line(x+13, cy+7, x+27, cy-7)
	canvas.Text("Past day", x+35, cy-6)
}
