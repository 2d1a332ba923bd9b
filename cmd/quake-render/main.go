package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-quake-map/internal/config"
	"github.com/mr1hm/go-quake-map/internal/geo"
	"github.com/mr1hm/go-quake-map/internal/ingestion"
	"github.com/mr1hm/go-quake-map/internal/logging"
	"github.com/mr1hm/go-quake-map/internal/marker"
	"github.com/mr1hm/go-quake-map/internal/models"
	"github.com/mr1hm/go-quake-map/internal/render"
)

type renderFlags struct {
	in        string
	feed      string
	out       string
	countries string
	cities    string
	lat       float64
	lon       float64
	zoom      float64
	width     int
	height    int
	threat    bool
	selectID  string
	noLegend  bool
	palette   marker.Palette
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	f := renderFlags{palette: cfg.Map.Palette}

	cmd := &cobra.Command{
		Use:   "quake-render",
		Short: "Render earthquake markers to a PNG map",
		Long: `Render earthquakes from a GeoJSON file (or the live USGS feed) onto a
Web Mercator map. Markers are coloured by depth, sized by magnitude and
crossed when the quake happened within the last day.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.in, "in", "", "GeoJSON file of quakes (defaults to the USGS feed)")
	fl.StringVar(&f.feed, "feed", cfg.Sources.USGSURL, "USGS GeoJSON feed URL")
	fl.StringVarP(&f.out, "out", "o", "quakes.png", "output PNG path")
	fl.StringVar(&f.countries, "countries", cfg.Data.CountriesPath, "GeoJSON country polygons")
	fl.StringVar(&f.cities, "cities", cfg.Data.CitiesPath, "GeoJSON city points")
	fl.Float64Var(&f.lat, "lat", cfg.Map.CenterLat, "map centre latitude")
	fl.Float64Var(&f.lon, "lon", cfg.Map.CenterLon, "map centre longitude")
	fl.Float64Var(&f.zoom, "zoom", cfg.Map.Zoom, "zoom level")
	fl.IntVar(&f.width, "width", cfg.Map.Width, "image width in pixels")
	fl.IntVar(&f.height, "height", cfg.Map.Height, "image height in pixels")
	fl.BoolVar(&f.threat, "threat", cfg.Map.ShowThreat, "draw threat circles for every quake")
	fl.StringVar(&f.selectID, "select", "", "quake ID whose threat circle and title are drawn")
	fl.BoolVar(&f.noLegend, "no-legend", false, "omit the legend")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if f.in == "" && f.feed == "" {
			return fmt.Errorf("either --in or --feed is required")
		}
		return nil
	}

	return cmd
}

func run(ctx context.Context, f renderFlags) error {
	var (
		quakes []*models.Earthquake
		err    error
	)
	if f.in != "" {
		quakes, err = ingestion.LoadQuakes(f.in)
	} else {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		quakes, err = ingestion.FetchUSGS(fetchCtx, f.feed)
	}
	if err != nil {
		return fmt.Errorf("error loading quakes: %w", err)
	}

	var landmass *geo.Landmass
	if f.countries != "" {
		if landmass, err = ingestion.LoadLandmass(f.countries); err != nil {
			return err
		}
	}
	var cities []models.City
	if f.cities != "" {
		if cities, err = ingestion.LoadCities(f.cities); err != nil {
			return err
		}
	}

	out, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", f.out, err)
	}
	defer out.Close()

	renderer := render.NewRenderer(f.palette, landmass, cities)
	err = renderer.RenderPNG(out, quakes, render.Options{
		Center:     models.Location{Latitude: f.lat, Longitude: f.lon},
		Zoom:       f.zoom,
		Width:      f.width,
		Height:     f.height,
		ShowThreat: f.threat,
		SelectedID: f.selectID,
		Legend:     !f.noLegend,
	})
	if err != nil {
		return fmt.Errorf("error rendering map: %w", err)
	}

	slog.Info("map written", "path", f.out, "quakes", len(quakes))
	return nil
}
