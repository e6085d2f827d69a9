package config

import (
	"math"

	"github.com/dmaher42/athens/pkg/projection"
)

// Config is the top-level project configuration read from walkmap.yaml.
type Config struct {
	Version  string             `yaml:"version" json:"version"`
	Source   SourceDef          `yaml:"source" json:"source"`
	Origin   *projection.LatLon `yaml:"origin,omitempty" json:"origin,omitempty"`
	Rotation float64            `yaml:"rotation" json:"rotation"`
	Geometry GeometryDef        `yaml:"geometry" json:"geometry"`
	Server   ServerDef          `yaml:"server" json:"server"`
}

// SourceDef locates the feature collection and optional fetch backends.
type SourceDef struct {
	GeoJSONURL      string   `yaml:"geojson_url" json:"geojson_url"`
	CacheTTLSeconds int      `yaml:"cache_ttl_s" json:"cache_ttl_s"`
	Redis           RedisDef `yaml:"redis" json:"redis"`
	MinIO           MinIODef `yaml:"minio" json:"minio"`
}

// RedisDef configures the optional fetch cache. Empty Addr disables it.
type RedisDef struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
}

// MinIODef configures s3:// sources. Empty Endpoint disables them.
type MinIODef struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"-"`
	SecretKey string `yaml:"secret_key" json:"-"`
	Secure    bool   `yaml:"secure" json:"secure"`
}

// GeometryDef holds the static construction options of the collision model.
type GeometryDef struct {
	CityWallBuffer    float64  `yaml:"city_wall_buffer" json:"city_wall_buffer"`
	LongWallBuffer    float64  `yaml:"long_wall_buffer" json:"long_wall_buffer"`
	CityPointRadius   float64  `yaml:"city_point_radius" json:"city_point_radius"`
	SlopeThreshold    float64  `yaml:"slope_threshold" json:"slope_threshold"`
	AcropolisRadii    RadiiDef `yaml:"acropolis_radii" json:"acropolis_radii"`
	CapSegments       int      `yaml:"cap_segments" json:"cap_segments"`
	EllipseSegments   int      `yaml:"ellipse_segments" json:"ellipse_segments"`
	CircleSegments    int      `yaml:"circle_segments" json:"circle_segments"`
	SimplifyTolerance float64  `yaml:"simplify_tolerance" json:"simplify_tolerance"`
}

// RadiiDef is an ellipse radius pair: Major runs east-west, Minor north-south.
type RadiiDef struct {
	Major float64 `yaml:"major" json:"major"`
	Minor float64 `yaml:"minor" json:"minor"`
}

// ServerDef configures the HTTP API.
type ServerDef struct {
	Port int `yaml:"port" json:"port"`
}

// DefaultSlopeThreshold is tan(19°), roughly 0.344.
var DefaultSlopeThreshold = math.Tan(19 * math.Pi / 180)

// Default returns a configuration with every option at its default.
func Default() *Config {
	return &Config{
		Version: "1",
		Source: SourceDef{
			CacheTTLSeconds: 3600,
		},
		Geometry: GeometryDef{
			CityWallBuffer:  2.5,
			LongWallBuffer:  4,
			CityPointRadius: 20000,
			SlopeThreshold:  DefaultSlopeThreshold,
			AcropolisRadii:  RadiiDef{Major: 130, Minor: 90},
			CapSegments:     12,
			EllipseSegments: 48,
			CircleSegments:  24,
		},
		Server: ServerDef{Port: 3000},
	}
}
