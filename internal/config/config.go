package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/mr1hm/go-quake-map/internal/marker"
)

type Config struct {
	Server  ServerConfig
	Worker  WorkerConfig
	Sources SourcesConfig
	DB      DatabaseConfig
	Logging LoggingConfig
	Map     MapConfig
	Data    DataConfig
	Stream  StreamConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourcesConfig struct {
	USGSEnabled      bool
	USGSURL          string
	USGSPollInterval time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MapConfig struct {
	Width      int
	Height     int
	Zoom       float64
	CenterLat  float64
	CenterLon  float64
	ShowThreat bool
	Palette    marker.Palette
}

type DataConfig struct {
	CountriesPath string // GeoJSON country polygons, optional
	CitiesPath    string // GeoJSON city points, optional
}

type StreamConfig struct {
	MinMagnitude float64
}

func Load() (*Config, error) {
	palette, err := marker.ParsePalette(
		getEnv("COLOR_SHALLOW", "#ffff00"),
		getEnv("COLOR_INTERMEDIATE", "#0000ff"),
		getEnv("COLOR_DEEP", "#ff0000"),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid marker palette: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Sources: SourcesConfig{
			USGSEnabled:      getEnvBool("USGS_ENABLED", true),
			USGSURL:          getEnv("USGS_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/2.5_week.geojson"),
			USGSPollInterval: getEnvDuration("USGS_POLL_INTERVAL", 5*time.Minute),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/quake-map.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Map: MapConfig{
			Width:      getEnvInt("MAP_WIDTH", 1024),
			Height:     getEnvInt("MAP_HEIGHT", 640),
			Zoom:       getEnvFloat("MAP_ZOOM", 2),
			CenterLat:  getEnvFloat("MAP_CENTER_LAT", 20),
			CenterLon:  getEnvFloat("MAP_CENTER_LON", 0),
			ShowThreat: getEnvBool("MAP_SHOW_THREAT", false),
			Palette:    palette,
		},
		Data: DataConfig{
			CountriesPath: getEnv("COUNTRIES_PATH", ""),
			CitiesPath:    getEnv("CITIES_PATH", ""),
		},
		Stream: StreamConfig{
			MinMagnitude: getEnvFloat("STREAM_MIN_MAGNITUDE", 4.5),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Sources.USGSPollInterval < time.Minute {
		return fmt.Errorf("USGS poll interval must be at least 1 minute")
	}

	if c.Map.Width < 1 || c.Map.Height < 1 || c.Map.Width > 4096 || c.Map.Height > 4096 {
		return fmt.Errorf("invalid map size: %dx%d", c.Map.Width, c.Map.Height)
	}
	if !(c.Map.Zoom >= 0 && c.Map.Zoom <= 18) {
		return fmt.Errorf("invalid map zoom: %v", c.Map.Zoom)
	}
	if !(c.Map.CenterLat >= -90 && c.Map.CenterLat <= 90) || !(c.Map.CenterLon >= -180 && c.Map.CenterLon <= 180) {
		return fmt.Errorf("invalid map center: %v,%v", c.Map.CenterLat, c.Map.CenterLon)
	}
	if math.IsNaN(c.Stream.MinMagnitude) {
		return fmt.Errorf("invalid stream min magnitude: %v", c.Stream.MinMagnitude)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
