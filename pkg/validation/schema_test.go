package validation

import (
	"math"
	"testing"

	"github.com/dmaher42/athens/pkg/config"
	"github.com/dmaher42/athens/pkg/projection"
)

func validConfig() *config.Config {
	c := config.Default()
	c.Source.GeoJSONURL = "athens.geojson"
	c.Origin = &projection.LatLon{Lat: 37.9715379, Lon: 23.7266531}
	return c
}

func TestValidateConfigValid(t *testing.T) {
	r := ValidateConfig(validConfig())
	if !r.Valid {
		t.Errorf("expected valid report, got %d errors: %v", len(r.Errors), r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", r.Warnings)
	}
}

func TestValidateConfigBuffers(t *testing.T) {
	c := validConfig()
	c.Geometry.CityWallBuffer = 0
	c.Geometry.LongWallBuffer = math.NaN()
	r := ValidateConfig(c)
	if r.Valid {
		t.Error("expected invalid report for non-positive buffers")
	}
	if len(r.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(r.Errors), r.Errors)
	}
}

func TestValidateConfigSlopeThreshold(t *testing.T) {
	c := validConfig()
	c.Geometry.SlopeThreshold = -0.1
	r := ValidateConfig(c)
	if r.Valid {
		t.Error("expected invalid report for negative slope threshold")
	}
	if r.Errors[0].Path != "geometry.slope_threshold" {
		t.Errorf("path = %q, want geometry.slope_threshold", r.Errors[0].Path)
	}
}

func TestValidateConfigSegmentsWarn(t *testing.T) {
	c := validConfig()
	c.Geometry.EllipseSegments = 6
	r := ValidateConfig(c)
	if !r.Valid {
		t.Error("low segment counts should only warn")
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}

func TestValidateConfigOrigin(t *testing.T) {
	c := validConfig()
	c.Origin = &projection.LatLon{Lat: 120, Lon: 0}
	if r := ValidateConfig(c); r.Valid {
		t.Error("expected invalid report for latitude 120")
	}

	c.Origin = nil
	r := ValidateConfig(c)
	if !r.Valid {
		t.Error("missing origin should not invalidate the config")
	}
	if len(r.Info) != 1 {
		t.Errorf("expected 1 info about origin inference, got %d", len(r.Info))
	}
}

func TestValidateConfigSource(t *testing.T) {
	c := validConfig()
	c.Source.GeoJSONURL = ""
	if r := ValidateConfig(c); r.Valid {
		t.Error("expected invalid report without a source")
	}

	c.Source.GeoJSONURL = "s3://maps/athens.geojson"
	r := ValidateConfig(c)
	if r.Valid {
		t.Error("expected invalid report for s3 source without endpoint")
	}
	c.Source.MinIO.Endpoint = "localhost:9000"
	if r := ValidateConfig(c); !r.Valid {
		t.Errorf("expected valid report with endpoint, got %v", r.Errors)
	}
}

func TestValidateConfigSimplifyTolerance(t *testing.T) {
	c := validConfig()
	c.Geometry.SimplifyTolerance = 3
	r := ValidateConfig(c)
	if !r.Valid {
		t.Error("a large tolerance should only warn")
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}

func TestValidateConfigPort(t *testing.T) {
	c := validConfig()
	c.Server.Port = 70000
	if r := ValidateConfig(c); r.Valid {
		t.Error("expected invalid report for port 70000")
	}
}
