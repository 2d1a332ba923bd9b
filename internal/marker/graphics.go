// Package marker draws earthquake and city markers onto a borrowed 2D graphics
// context. Neither the graphics context nor the projector is retained between
// calls.
package marker

import (
	"image/color"

	"github.com/mr1hm/go-quake-map/internal/models"
)

// Graphics is the drawing surface markers render onto. Style changes (fill,
// stroke, stroke weight) apply until the matching PopStyle.
type Graphics interface {
	PushStyle()
	PopStyle()
	Fill(c color.Color)
	NoFill()
	Stroke(c color.Color)
	NoStroke()
	StrokeWeight(w float64)

	// Ellipse is centred on (x, y) with width w and height h.
	Ellipse(x, y, w, h float64)
	// Rect has its top-left corner at (x, y).
	Rect(x, y, w, h float64)
	Triangle(x1, y1, x2, y2, x3, y3 float64)
	Line(x1, y1, x2, y2 float64)
	// Text draws s with its top-left corner at (x, y) in the current fill.
	Text(s string, x, y float64)
	TextWidth(s string) float64
}

type ScreenPoint struct {
	X, Y float64
}

// Projector maps geographic coordinates to screen pixels.
type Projector interface {
	ScreenPosition(loc models.Location) ScreenPoint
}

// Marker is anything that can be placed on the map.
type Marker interface {
	Location() models.Location
	Draw(g Graphics, proj Projector, x, y float64)
	ShowTitle(g Graphics, x, y float64)
	Selected() bool
}
