package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmaher42/athens/pkg/scene2d"
)

const athensProject = "../../examples/athens"

func TestRunValidate(t *testing.T) {
	var buf bytes.Buffer
	ok, err := runValidate(context.Background(), &buf, athensProject)
	if err != nil {
		t.Fatalf("runValidate failed: %v", err)
	}
	if !ok {
		t.Errorf("expected valid project, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Result: VALID") {
		t.Errorf("missing result line:\n%s", buf.String())
	}
}

func TestRunValidateBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := "geometry:\n  long_wall_buffer: -4\nsource:\n  geojson_url: athens.geojson\n"
	if err := os.WriteFile(filepath.Join(dir, "walkmap.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	ok, err := runValidate(context.Background(), &buf, dir)
	if err != nil {
		t.Fatalf("runValidate failed: %v", err)
	}
	if ok {
		t.Error("expected invalid project")
	}
	if !strings.Contains(buf.String(), "geometry.long_wall_buffer") {
		t.Errorf("expected the failing path in output:\n%s", buf.String())
	}
}

func TestRunBuild(t *testing.T) {
	var buf bytes.Buffer
	if err := runBuild(context.Background(), &buf, athensProject, ""); err != nil {
		t.Fatalf("runBuild failed: %v", err)
	}
	var sc scene2d.Scene2D
	if err := json.Unmarshal(buf.Bytes(), &sc); err != nil {
		t.Fatalf("output is not a scene: %v", err)
	}
	if len(sc.Layers) != 4 {
		t.Errorf("expected 4 layers, got %d", len(sc.Layers))
	}
}

func TestRunProbe(t *testing.T) {
	var buf bytes.Buffer
	if err := runProbe(context.Background(), &buf, athensProject, "0", "0", probeOptions{}); err != nil {
		t.Fatalf("runProbe failed: %v", err)
	}
	if !strings.Contains(buf.String(), "BLOCKED (acropolis)") {
		t.Errorf("expected acropolis block:\n%s", buf.String())
	}

	buf.Reset()
	opts := probeOptions{slope: 0.2, slopeSet: true, threshold: 0.3}
	if err := runProbe(context.Background(), &buf, athensProject, "0", "0", opts); err != nil {
		t.Fatalf("runProbe failed: %v", err)
	}
	if !strings.Contains(buf.String(), "WALKABLE") {
		t.Errorf("expected walkable with gentle slope:\n%s", buf.String())
	}

	if err := runProbe(context.Background(), &buf, athensProject, "east", "0", probeOptions{}); err == nil {
		t.Error("expected parse error")
	}
}
