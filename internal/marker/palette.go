package marker

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type Palette struct {
	Shallow      color.Color
	Intermediate color.Color
	Deep         color.Color
}

var DefaultPalette = Palette{
	Shallow:      color.RGBA{R: 255, G: 255, B: 0, A: 255},
	Intermediate: color.RGBA{R: 0, G: 0, B: 255, A: 255},
	Deep:         color.RGBA{R: 255, G: 0, B: 0, A: 255},
}

// ParsePalette builds a palette from "#rrggbb" strings.
func ParsePalette(shallow, intermediate, deep string) (Palette, error) {
	var p Palette
	for _, entry := range []struct {
		hex string
		dst *color.Color
	}{
		{shallow, &p.Shallow},
		{intermediate, &p.Intermediate},
		{deep, &p.Deep},
	} {
		c, err := colorful.Hex(entry.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("error parsing colour %q: %w", entry.hex, err)
		}
		*entry.dst = c.Clamped()
	}
	return p, nil
}

// For returns the fill colour for a depth class.
func (p Palette) For(class models.DepthClass) color.Color {
	switch class {
	case models.DepthIntermediate:
		return p.Intermediate
	case models.DepthDeep:
		return p.Deep
	default:
		return p.Shallow
	}
}
