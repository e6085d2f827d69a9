package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmaher42/athens/pkg/projection"
)

// ProjectFile is the configuration file name inside a project directory.
const ProjectFile = "walkmap.yaml"

// ErrInvalidConfig marks a configuration rejected by validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads a configuration from a YAML file. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return cfg, nil
}

// LoadProject loads the configuration of a project directory. It reads
// walkmap.yaml, applies .env and environment overrides, and resolves a
// relative GeoJSON path against the directory.
func LoadProject(projectDir string) (*Config, error) {
	cfg, err := Load(filepath.Join(projectDir, ProjectFile))
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load(filepath.Join(projectDir, ".env"))
	_ = godotenv.Load(".env")
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.Source.GeoJSONURL = resolveLocal(projectDir, cfg.Source.GeoJSONURL)
	return cfg, nil
}

// ApplyEnv overrides configuration fields from environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("WALKMAP_GEOJSON_URL"); v != "" {
		cfg.Source.GeoJSONURL = v
	}
	lat, lon := os.Getenv("WALKMAP_ORIGIN_LAT"), os.Getenv("WALKMAP_ORIGIN_LON")
	if lat != "" || lon != "" {
		if lat == "" || lon == "" {
			return fmt.Errorf("WALKMAP_ORIGIN_LAT and WALKMAP_ORIGIN_LON must be set together")
		}
		la, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return fmt.Errorf("parsing WALKMAP_ORIGIN_LAT: %w", err)
		}
		lo, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return fmt.Errorf("parsing WALKMAP_ORIGIN_LON: %w", err)
		}
		cfg.Origin = &projection.LatLon{Lat: la, Lon: lo}
	}
	if v := os.Getenv("WALKMAP_SLOPE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing WALKMAP_SLOPE_THRESHOLD: %w", err)
		}
		cfg.Geometry.SlopeThreshold = f
	}
	if v := os.Getenv("WALKMAP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing WALKMAP_PORT: %w", err)
		}
		cfg.Server.Port = n
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.Source.Redis.Addr = host + ":" + port
	}
	if v := os.Getenv("REDIS_PASS"); v != "" {
		cfg.Source.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("parsing REDIS_DB: invalid database index %q", v)
		}
		cfg.Source.Redis.DB = n
	}

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Source.MinIO.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Source.MinIO.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Source.MinIO.SecretKey = v
	}
	if v := os.Getenv("MINIO_SECURE"); v != "" {
		cfg.Source.MinIO.Secure = v == "1" || strings.EqualFold(v, "true")
	}
	return nil
}

// resolveLocal joins a relative file path onto dir, leaving URLs and
// absolute paths alone.
func resolveLocal(dir, loc string) string {
	if loc == "" || strings.Contains(loc, "://") || filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(dir, loc)
}
