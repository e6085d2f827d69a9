package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmaher42/athens/pkg/config"
)

// Minimum ring resolutions accepted in configuration.
const (
	minCapSegments     = 4
	minEllipseSegments = 12
	minCircleSegments  = 8
)

// ValidateConfig checks a parsed Config for out-of-range values before any
// geometry is built.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateBuffers(c, r)
	validateSlope(c, r)
	validateAcropolis(c, r)
	validateSegments(c, r)
	validateOrigin(c, r)
	validateSource(c, r)
	validateServer(c, r)

	return r
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func validateBuffers(c *config.Config, r *Report) {
	g := c.Geometry
	buffers := []struct {
		path  string
		value float64
	}{
		{"geometry.city_wall_buffer", g.CityWallBuffer},
		{"geometry.long_wall_buffer", g.LongWallBuffer},
		{"geometry.city_point_radius", g.CityPointRadius},
	}
	for _, b := range buffers {
		if !positive(b.value) {
			r.AddError(Result{
				Level:       LevelConfig,
				Message:     fmt.Sprintf("%s must be a positive distance in metres", b.path),
				Path:        b.path,
				ActualValue: b.value,
				Expected:    "> 0",
			})
		}
	}
	if g.SimplifyTolerance < 0 || math.IsNaN(g.SimplifyTolerance) {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "simplify_tolerance must be >= 0",
			Path:        "geometry.simplify_tolerance",
			ActualValue: g.SimplifyTolerance,
			Expected:    ">= 0 (0 disables simplification)",
		})
	}
	if g.SimplifyTolerance > 0 && g.SimplifyTolerance >= math.Min(g.CityWallBuffer, g.LongWallBuffer) {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("simplify_tolerance %.2fm is not smaller than the narrowest wall buffer", g.SimplifyTolerance),
			Path:        "geometry.simplify_tolerance",
			ActualValue: g.SimplifyTolerance,
			Suggestions: []string{"Keep the tolerance well below the wall buffers so simplified walls stay inside their original footprint"},
		})
	}
}

func validateSlope(c *config.Config, r *Report) {
	t := c.Geometry.SlopeThreshold
	if !positive(t) {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "slope_threshold must be a positive finite rise/run ratio",
			Path:        "geometry.slope_threshold",
			ActualValue: t,
			Expected:    "> 0",
		})
		return
	}
	if t > 10 {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("slope_threshold %.2f is steeper than 84 degrees; cliffs will almost never block", t),
			Path:        "geometry.slope_threshold",
			ActualValue: t,
		})
	}
}

func validateAcropolis(c *config.Config, r *Report) {
	a := c.Geometry.AcropolisRadii
	if !positive(a.Major) || !positive(a.Minor) {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "acropolis_radii major and minor must both be positive",
			Path:        "geometry.acropolis_radii",
			ActualValue: fmt.Sprintf("%v/%v", a.Major, a.Minor),
			Expected:    "> 0",
		})
	}
}

func validateSegments(c *config.Config, r *Report) {
	g := c.Geometry
	segments := []struct {
		path  string
		value int
		min   int
	}{
		{"geometry.cap_segments", g.CapSegments, minCapSegments},
		{"geometry.ellipse_segments", g.EllipseSegments, minEllipseSegments},
		{"geometry.circle_segments", g.CircleSegments, minCircleSegments},
	}
	for _, s := range segments {
		if s.value < s.min {
			r.AddWarning(Result{
				Level:       LevelConfig,
				Message:     fmt.Sprintf("%s %d is below the minimum of %d and will be raised", s.path, s.value, s.min),
				Path:        s.path,
				ActualValue: s.value,
				Expected:    fmt.Sprintf(">= %d", s.min),
			})
		}
	}
}

func validateOrigin(c *config.Config, r *Report) {
	if c.Origin == nil {
		r.AddInfo(Result{
			Level:   LevelConfig,
			Message: "no origin configured; it will be inferred from point features",
			Path:    "origin",
		})
		return
	}
	if !c.Origin.Valid() {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "origin must be a valid latitude/longitude",
			Path:        "origin",
			ActualValue: fmt.Sprintf("%v,%v", c.Origin.Lat, c.Origin.Lon),
			Expected:    "lat in [-90,90], lon in [-180,180]",
		})
	}
	if math.IsNaN(c.Rotation) || math.IsInf(c.Rotation, 0) {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "rotation must be finite",
			Path:        "rotation",
			ActualValue: c.Rotation,
		})
	}
}

func validateSource(c *config.Config, r *Report) {
	s := c.Source
	if s.GeoJSONURL == "" {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "source.geojson_url is required",
			Path:        "source.geojson_url",
			Suggestions: []string{"Point it at a local .geojson file, an http(s) URL or s3://bucket/key"},
		})
		return
	}
	if strings.HasPrefix(s.GeoJSONURL, "s3://") && s.MinIO.Endpoint == "" {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "s3:// sources need source.minio.endpoint",
			Path:        "source.minio.endpoint",
			ActualValue: s.GeoJSONURL,
		})
	}
	if s.CacheTTLSeconds < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "source.cache_ttl_s must be >= 0",
			Path:        "source.cache_ttl_s",
			ActualValue: s.CacheTTLSeconds,
			Expected:    ">= 0",
		})
	}
}

func validateServer(c *config.Config, r *Report) {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("server.port %d is outside 1-65535", c.Server.Port),
			Path:        "server.port",
			ActualValue: c.Server.Port,
			Expected:    "1-65535",
		})
	}
}
