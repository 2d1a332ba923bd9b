package api

import (
	"bytes"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-quake-map/internal/config"
	"github.com/mr1hm/go-quake-map/internal/models"
	"github.com/mr1hm/go-quake-map/internal/render"
	"github.com/mr1hm/go-quake-map/internal/repository"
	"github.com/mr1hm/go-quake-map/internal/stream"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
	defaultMapLimit  = 500
)

type Handler struct {
	repo        repository.QuakeRepository
	broadcaster *stream.Broadcaster
	renderer    *render.Renderer
	mapCfg      config.MapConfig
}

func NewHandler(repo repository.QuakeRepository, broadcaster *stream.Broadcaster, renderer *render.Renderer, mapCfg config.MapConfig) *Handler {
	return &Handler{
		repo:        repo,
		broadcaster: broadcaster,
		renderer:    renderer,
		mapCfg:      mapCfg,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/quakes", h.getQuakes)
	r.GET("/api/quakes/:id", h.getQuake)
	r.GET("/api/map.png", h.getMap)
	r.GET("/api/stream", h.streamQuakes)
	r.GET("/health", h.health)
}

func (h *Handler) getQuakes(c *gin.Context) {
	filter, ok := parseFilter(c, defaultListLimit)
	if !ok {
		return
	}

	quakes, err := h.repo.ListQuakes(c.Request.Context(), filter)
	if err != nil {
		slog.Error("failed to list quakes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch quakes",
		})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(quakes))
}

func (h *Handler) getQuake(c *gin.Context) {
	q, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("failed to get quake", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch quake"})
		return
	}
	if q == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "quake not found"})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toFeature(q))
}

func (h *Handler) getMap(c *gin.Context) {
	filter, ok := parseFilter(c, defaultMapLimit)
	if !ok {
		return
	}

	opts := render.Options{
		Center: models.Location{
			Latitude:  queryFloat(c, "lat", h.mapCfg.CenterLat),
			Longitude: queryFloat(c, "lon", h.mapCfg.CenterLon),
		},
		Zoom:       queryFloat(c, "zoom", h.mapCfg.Zoom),
		Width:      queryInt(c, "width", h.mapCfg.Width),
		Height:     queryInt(c, "height", h.mapCfg.Height),
		ShowThreat: h.mapCfg.ShowThreat,
		SelectedID: c.Query("select"),
		Legend:     c.Query("legend") != "false",
	}
	if t := c.Query("threat"); t != "" {
		if b, err := strconv.ParseBool(t); err == nil {
			opts.ShowThreat = b
		}
	}
	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quakes, err := h.repo.ListQuakes(c.Request.Context(), filter)
	if err != nil {
		slog.Error("failed to list quakes for map", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch quakes"})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderPNG(&buf, quakes, opts); err != nil {
		slog.Error("failed to render map", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render map"})
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// streamQuakes pushes newly ingested quakes as Server-Sent Events until the
// client disconnects or the broadcaster is closed.
func (h *Handler) streamQuakes(c *gin.Context) {
	minMag := queryFloat(c, "min_magnitude", 0)

	id, ch := h.broadcaster.Subscribe(minMag)
	defer h.broadcaster.Unsubscribe(id)

	slog.Info("client subscribed to quake stream", "subscriber_id", id, "min_magnitude", minMag)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Info("client disconnected from quake stream", "subscriber_id", id)
			return
		case q, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("quake", toFeature(q))
			c.Writer.Flush()
		}
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseFilter writes a 400 response and returns false on malformed parameters.
func parseFilter(c *gin.Context, defaultLimit int) (repository.Filter, bool) {
	filter := repository.Filter{
		Limit: defaultLimit,
	}

	if m := c.Query("min_magnitude"); m != "" {
		mag, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsNaN(mag) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_magnitude"})
			return filter, false
		}
		filter.MinMagnitude = &mag
	}
	if s := c.Query("since"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since, expected YYYY-MM-DD"})
			return filter, false
		}
		filter.Since = &t
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxListLimit {
			filter.Limit = lim
		}
	}
	return filter, true
}

func queryFloat(c *gin.Context, key string, fallback float64) float64 {
	if v := c.Query(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
