package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dmaher42/athens/internal/logger"
	"github.com/dmaher42/athens/internal/server"
	"github.com/dmaher42/athens/internal/source"
	"github.com/dmaher42/athens/pkg/collision"
	"github.com/dmaher42/athens/pkg/config"
	"github.com/dmaher42/athens/pkg/scene2d"
	"github.com/dmaher42/athens/pkg/validation"
)

// loadAndValidate loads the project config and runs config validation.
func loadAndValidate(projectPath string) (*config.Config, *validation.Report, error) {
	cfg, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, validation.ValidateConfig(cfg), nil
}

// newGeometry wires the configured fetch backends into an unloaded
// geometry. The returned source must be closed by the caller.
func newGeometry(cfg *config.Config) (*collision.Geometry, *source.Source, error) {
	src, err := source.FromConfig(cfg.Source)
	if err != nil {
		return nil, nil, err
	}
	opts := collision.OptionsFromConfig(cfg)
	opts.Fetcher = src
	return collision.New(opts), src, nil
}

// loadProject validates the config and loads the geometry. A config that
// fails validation is returned with its report and no geometry.
func loadProject(ctx context.Context, projectPath string) (*collision.Geometry, *validation.Report, error) {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return nil, nil, err
	}
	if !report.Valid {
		return nil, report, fmt.Errorf("%w: %s", config.ErrInvalidConfig, report.Summary)
	}

	g, src, err := newGeometry(cfg)
	if err != nil {
		return nil, report, err
	}
	defer src.Close()

	if _, err := g.Load(ctx, collision.LoadOptions{}); err != nil {
		return nil, report, fmt.Errorf("loading geometry: %w", err)
	}
	report.Merge(g.Report())
	return g, report, nil
}

func runValidate(ctx context.Context, w io.Writer, projectPath string) (bool, error) {
	_, report, err := loadProject(ctx, projectPath)
	if report == nil {
		return false, err
	}
	if err != nil {
		report.AddError(validation.Result{
			Level:   validation.LevelIngest,
			Message: err.Error(),
		})
	}
	printValidationReport(w, report)
	return report.Valid, nil
}

func runBuild(ctx context.Context, w io.Writer, projectPath, out string) error {
	g, report, err := loadProject(ctx, projectPath)
	if err != nil {
		if report != nil {
			printValidationReport(os.Stderr, report)
		}
		return err
	}

	sc := scene2d.Assemble(g.Snapshot())
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sc); err != nil {
		return fmt.Errorf("writing scene: %w", err)
	}
	if out != "" {
		logger.L().Info("scene_written", "path", out, "snapshot", sc.Metadata.SnapshotID)
	}
	return nil
}

type probeOptions struct {
	slope     float64
	slopeSet  bool
	threshold float64
}

func runProbe(ctx context.Context, w io.Writer, projectPath, xs, ys string, opts probeOptions) error {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return fmt.Errorf("parsing x: %w", err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return fmt.Errorf("parsing y: %w", err)
	}

	g, _, err := loadProject(ctx, projectPath)
	if err != nil {
		return err
	}
	if opts.slopeSet {
		g.SetSlopeMap(collision.ConstantSlope(opts.slope), opts.threshold)
	}
	printVerdict(w, x, y, g.Probe(x, y), g)
	return nil
}

func runServe(ctx context.Context, projectPath string, port int) error {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(os.Stderr, report)
		return fmt.Errorf("%w: %s", config.ErrInvalidConfig, report.Summary)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	g, src, err := newGeometry(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	srv := server.New(g, report, port)
	if _, err := srv.Reload(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	return srv.Start(ctx)
}
