package geo

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type Country struct {
	Name     string
	Polygons []*geom.Polygon
}

// Landmass answers which country, if any, contains a location.
type Landmass struct {
	countries []Country
}

// NewLandmass builds a landmass from country features. Features whose geometry is
// not a Polygon or MultiPolygon are rejected.
func NewLandmass(fc *geojson.FeatureCollection) (*Landmass, error) {
	lm := &Landmass{}
	for _, f := range fc.Features {
		name, _ := f.Properties["name"].(string)
		c := Country{Name: name}

		switch g := f.Geometry.(type) {
		case *geom.Polygon:
			c.Polygons = append(c.Polygons, g)
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				c.Polygons = append(c.Polygons, g.Polygon(i))
			}
		default:
			return nil, fmt.Errorf("country %q: unsupported geometry %T", name, f.Geometry)
		}
		lm.countries = append(lm.countries, c)
	}
	return lm, nil
}

func (l *Landmass) Countries() []Country {
	return l.countries
}

// Locate returns the name of the country containing loc.
func (l *Landmass) Locate(loc models.Location) (string, bool) {
	if l == nil {
		return "", false
	}
	p := geom.Coord{loc.Longitude, loc.Latitude}
	for _, c := range l.countries {
		for _, poly := range c.Polygons {
			if polygonContains(poly, p) {
				return c.Name, true
			}
		}
	}
	return "", false
}

func polygonContains(poly *geom.Polygon, p geom.Coord) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	if stride := poly.Layout().Stride(); len(p) < stride {
		padded := make(geom.Coord, stride)
		copy(padded, p)
		p = padded
	}
	if !poly.Bounds().OverlapsPoint(poly.Layout(), p) {
		return false
	}
	if !xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
