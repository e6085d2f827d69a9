package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadProject(t *testing.T) {
	c, err := LoadProject("../../examples/athens")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	if c.Version != "1" {
		t.Errorf("version = %q, want %q", c.Version, "1")
	}
	if c.Origin == nil {
		t.Fatal("expected origin to be set")
	}
	if math.Abs(c.Origin.Lat-37.9715379) > 1e-9 || math.Abs(c.Origin.Lon-23.7266531) > 1e-9 {
		t.Errorf("origin = %v, want 37.9715379,23.7266531", *c.Origin)
	}
	if !strings.HasSuffix(c.Source.GeoJSONURL, filepath.Join("athens", "athens.geojson")) {
		t.Errorf("geojson_url = %q, want it resolved against the project dir", c.Source.GeoJSONURL)
	}

	g := c.Geometry
	if g.CityWallBuffer != 2.5 {
		t.Errorf("city_wall_buffer = %v, want 2.5", g.CityWallBuffer)
	}
	if g.LongWallBuffer != 4 {
		t.Errorf("long_wall_buffer = %v, want 4", g.LongWallBuffer)
	}
	if g.AcropolisRadii.Major != 130 || g.AcropolisRadii.Minor != 90 {
		t.Errorf("acropolis radii = %v/%v, want 130/90", g.AcropolisRadii.Major, g.AcropolisRadii.Minor)
	}
	if g.EllipseSegments != 48 {
		t.Errorf("ellipse_segments = %d, want 48", g.EllipseSegments)
	}
	if c.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000", c.Server.Port)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFile)
	if err := os.WriteFile(path, []byte("geometry:\n  long_wall_buffer: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Geometry.LongWallBuffer != 6 {
		t.Errorf("long_wall_buffer = %v, want 6", c.Geometry.LongWallBuffer)
	}
	if c.Geometry.CityWallBuffer != 2.5 {
		t.Errorf("city_wall_buffer = %v, want default 2.5", c.Geometry.CityWallBuffer)
	}
	if math.Abs(c.Geometry.SlopeThreshold-0.3443) > 1e-3 {
		t.Errorf("slope_threshold = %v, want ~0.344", c.Geometry.SlopeThreshold)
	}
	if c.Origin != nil {
		t.Errorf("origin = %v, want nil", *c.Origin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFile)
	if err := os.WriteFile(path, []byte("geometry: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WALKMAP_GEOJSON_URL", "https://example.org/athens.geojson")
	t.Setenv("WALKMAP_ORIGIN_LAT", "37.97")
	t.Setenv("WALKMAP_ORIGIN_LON", "23.72")
	t.Setenv("WALKMAP_SLOPE_THRESHOLD", "0.5")
	t.Setenv("WALKMAP_PORT", "8080")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "")

	c := Default()
	if err := ApplyEnv(c); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if c.Source.GeoJSONURL != "https://example.org/athens.geojson" {
		t.Errorf("geojson_url = %q", c.Source.GeoJSONURL)
	}
	if c.Origin == nil || c.Origin.Lat != 37.97 || c.Origin.Lon != 23.72 {
		t.Errorf("origin = %v, want 37.97,23.72", c.Origin)
	}
	if c.Geometry.SlopeThreshold != 0.5 {
		t.Errorf("slope_threshold = %v, want 0.5", c.Geometry.SlopeThreshold)
	}
	if c.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", c.Server.Port)
	}
	if c.Source.Redis.Addr != "cache:6379" {
		t.Errorf("redis addr = %q, want cache:6379", c.Source.Redis.Addr)
	}
}

func TestApplyEnvOriginNeedsBoth(t *testing.T) {
	t.Setenv("WALKMAP_ORIGIN_LAT", "37.97")
	t.Setenv("WALKMAP_ORIGIN_LON", "")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("expected error when only latitude is set")
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	t.Setenv("WALKMAP_SLOPE_THRESHOLD", "steep")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnvRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Source.Redis.DB != 3 {
		t.Errorf("redis db = %d, want 3", cfg.Source.Redis.DB)
	}

	for _, bad := range []string{"two", "-1"} {
		t.Setenv("REDIS_DB", bad)
		if err := ApplyEnv(Default()); err == nil {
			t.Errorf("REDIS_DB=%q: expected parse error", bad)
		}
	}
}
