package render

import (
	"image/color"

	"github.com/fogleman/gg"

	"github.com/mr1hm/go-quake-map/internal/marker"
)

type style struct {
	fill   color.Color // nil means no fill
	stroke color.Color // nil means no stroke
	weight float64
}

// Canvas adapts a gg context to marker.Graphics. gg has a single current colour,
// so fill and stroke are tracked here and applied per primitive.
type Canvas struct {
	dc    *gg.Context
	cur   style
	stack []style
}

var _ marker.Graphics = (*Canvas)(nil)

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		dc: gg.NewContext(width, height),
		cur: style{
			fill:   color.White,
			stroke: color.Black,
			weight: 1,
		},
	}
}

func (c *Canvas) Context() *gg.Context { return c.dc }

// Depth is the number of pushed styles not yet popped.
func (c *Canvas) Depth() int { return len(c.stack) }

func (c *Canvas) PushStyle() {
	c.stack = append(c.stack, c.cur)
	c.dc.Push()
}

func (c *Canvas) PopStyle() {
	if len(c.stack) == 0 {
		return
	}
	c.cur = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.dc.Pop()
}

func (c *Canvas) Fill(col color.Color)   { c.cur.fill = col }
func (c *Canvas) NoFill()                { c.cur.fill = nil }
func (c *Canvas) Stroke(col color.Color) { c.cur.stroke = col }
func (c *Canvas) NoStroke()              { c.cur.stroke = nil }
func (c *Canvas) StrokeWeight(w float64) { c.cur.weight = w }

func (c *Canvas) Ellipse(x, y, w, h float64) {
	c.paint(func() { c.dc.DrawEllipse(x, y, w/2, h/2) })
}

func (c *Canvas) Rect(x, y, w, h float64) {
	c.paint(func() { c.dc.DrawRectangle(x, y, w, h) })
}

func (c *Canvas) Triangle(x1, y1, x2, y2, x3, y3 float64) {
	c.paint(func() {
		c.dc.MoveTo(x1, y1)
		c.dc.LineTo(x2, y2)
		c.dc.LineTo(x3, y3)
		c.dc.ClosePath()
	})
}

func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	if c.cur.stroke == nil {
		return
	}
	c.dc.SetColor(c.cur.stroke)
	c.dc.SetLineWidth(c.cur.weight)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}

func (c *Canvas) Text(s string, x, y float64) {
	if c.cur.fill == nil {
		return
	}
	c.dc.SetColor(c.cur.fill)
	c.dc.DrawStringAnchored(s, x, y, 0, 1)
}

func (c *Canvas) TextWidth(s string) float64 {
	w, _ := c.dc.MeasureString(s)
	return w
}

// paint fills then strokes the path built by draw, honouring NoFill/NoStroke.
func (c *Canvas) paint(draw func()) {
	draw()
	if c.cur.fill != nil {
		c.dc.SetColor(c.cur.fill)
		if c.cur.stroke != nil {
			c.dc.FillPreserve()
		} else {
			c.dc.Fill()
		}
	}
	if c.cur.stroke != nil {
		c.dc.SetColor(c.cur.stroke)
		c.dc.SetLineWidth(c.cur.weight)
		c.dc.Stroke()
	}
	c.dc.ClearPath()
}
