// Package collision answers whether an agent may stand at a planar
// position. A Geometry is built from a GeoJSON feature collection: wall
// lines are buffered into hard blockers, and the acropolis and hills become
// cliff zones that block unless a slope sampler says the ground is gentle.
package collision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/dmaher42/athens/internal/logger"
	"github.com/dmaher42/athens/internal/source"
	"github.com/dmaher42/athens/pkg/features"
	"github.com/dmaher42/athens/pkg/geo"
	"github.com/dmaher42/athens/pkg/projection"
	"github.com/dmaher42/athens/pkg/validation"
)

var (
	// ErrNoProjector is returned when Load has no projector, no origin and
	// no point feature to infer an origin from.
	ErrNoProjector = errors.New("no projector: supply a projector or origin, or include point features")
	// ErrNoSource is returned when Load is given nothing to read.
	ErrNoSource = errors.New("no feature collection source")
)

// LoadOptions selects the collection and projection for one Load. The
// first non-empty of Collection, Data and URL is used, then
// Options.GeoJSONURL.
type LoadOptions struct {
	Collection *geojson.FeatureCollection
	Data       []byte
	URL        string

	Projector projection.Projector
	Origin    *projection.LatLon
}

// Geometry owns the current CityModel and slope gate. IsWalkable is safe
// to call concurrently with Load and SetSlopeMap.
type Geometry struct {
	opts Options
	log  *slog.Logger

	model atomic.Pointer[CityModel]
	slope atomic.Pointer[slopeGate]

	loadMu sync.Mutex
}

// New returns an unloaded Geometry. Until the first successful Load every
// finite position is walkable.
func New(opts Options) *Geometry {
	opts = opts.withDefaults()
	g := &Geometry{opts: opts, log: opts.Logger}
	if g.log == nil {
		g.log = logger.L()
	}
	if g.opts.Fetcher == nil {
		g.opts.Fetcher = &source.Source{Log: g.log}
	}
	g.slope.Store(&slopeGate{threshold: opts.SlopeThreshold})
	return g
}

// Options returns the effective options.
func (g *Geometry) Options() Options {
	return g.opts
}

// Load reads a feature collection and replaces the model. On error the
// previous model stays active. Concurrent calls are serialised.
func (g *Geometry) Load(ctx context.Context, lo LoadOptions) (*CityModel, error) {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	start := time.Now()
	fc, report, err := g.collection(ctx, lo)
	if err != nil {
		g.log.Warn("geometry_load_failed", "stage", "source", "err", err)
		return nil, err
	}

	proj, origin, err := g.projector(lo, fc, report)
	if err != nil {
		g.log.Warn("geometry_load_failed", "stage", "projection", "err", err)
		return nil, err
	}

	in, ingestReport := features.Ingest(fc, features.IngestOptions{
		Projector:         proj,
		Rules:             g.opts.Rules,
		SimplifyTolerance: g.opts.SimplifyTolerance,
	})
	report.Merge(ingestReport)

	m := buildModel(in, g.opts, report)
	m.Origin = origin
	g.model.Store(m)

	g.log.Info("geometry_load_ok",
		"snapshot", m.ID,
		"city_wall", len(m.CityWall),
		"long_walls", len(m.LongWalls),
		"acropolis", len(m.Acropolis),
		"additional", len(m.Additional),
		"locations", m.Locations.Len(),
		"fallback_city_wall", m.FallbackCityWall,
		"warnings", len(report.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return m, nil
}

func (g *Geometry) collection(ctx context.Context, lo LoadOptions) (*geojson.FeatureCollection, *validation.Report, error) {
	if lo.Collection != nil {
		return lo.Collection, validation.NewReport(), nil
	}

	data := lo.Data
	if len(data) == 0 {
		loc := lo.URL
		if loc == "" {
			loc = g.opts.GeoJSONURL
		}
		if loc == "" {
			return nil, nil, ErrNoSource
		}
		var err error
		data, err = g.opts.Fetcher.Fetch(ctx, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching feature collection: %w", err)
		}
	}

	fc, report, err := features.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding feature collection: %w", err)
	}
	return fc, report, nil
}

// projector resolves, in order: the load projector, the load origin, the
// configured origin, and the mean of the point features.
func (g *Geometry) projector(lo LoadOptions, fc *geojson.FeatureCollection, report *validation.Report) (projection.Projector, *projection.LatLon, error) {
	if lo.Projector != nil {
		return lo.Projector, nil, nil
	}

	origin := lo.Origin
	if origin == nil {
		origin = g.opts.Origin
	}
	if origin == nil {
		inferred, ok := projection.InferOrigin(features.PointCoordinates(fc))
		if !ok {
			return nil, nil, ErrNoProjector
		}
		origin = &inferred
		report.AddInfo(validation.Result{
			Level:       validation.LevelIngest,
			Message:     "projection origin inferred from point features",
			ActualValue: fmt.Sprintf("%.7f,%.7f", inferred.Lat, inferred.Lon),
		})
	}

	p, err := projection.NewEquirectangular(*origin, g.opts.Rotation)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoProjector, err)
	}
	o := p.Origin()
	return p, &o, nil
}

// KeepThreshold passed to SetSlopeMap leaves the active threshold unchanged.
var KeepThreshold = math.NaN()

// SetSlopeMap attaches a slope sampler for the cliff zones. A nil sampler
// detaches it. A threshold that is negative or not finite (KeepThreshold)
// keeps the current threshold; zero blocks any positive slope. Polygon
// data is untouched.
func (g *Geometry) SetSlopeMap(s SlopeSampler, threshold float64) {
	cur := g.slope.Load()
	next := &slopeGate{sampler: s, threshold: cur.threshold}
	if isNilSampler(s) {
		next.sampler = nil
	}
	if finite(threshold) && threshold >= 0 {
		next.threshold = threshold
	}
	g.slope.Store(next)
}

// SlopeThreshold returns the active slope threshold.
func (g *Geometry) SlopeThreshold() float64 {
	return g.slope.Load().threshold
}

// HasSlopeMap reports whether a slope sampler is attached.
func (g *Geometry) HasSlopeMap() bool {
	return g.slope.Load().sampler != nil
}

// Verdict is the outcome of a walkability query. Reason is empty for
// walkable points and otherwise names what blocked the point.
type Verdict struct {
	Walkable bool   `json:"walkable"`
	Reason   string `json:"reason,omitempty"`
}

// Block reasons beyond the polygon layers.
const (
	ReasonNonFinite = "non_finite"
	ReasonSlope     = "slope"
)

// IsWalkable reports whether an agent may stand at (x, y).
func (g *Geometry) IsWalkable(x, y float64) bool {
	return g.Probe(x, y).Walkable
}

// Probe is IsWalkable with the blocking reason.
//
// Non-finite input blocks. Before the first load every finite point is
// walkable. Inside a cliff polygon the point blocks unless a slope sampler
// is attached and reports a finite slope no greater than the threshold;
// only the first containing cliff polygon is sampled. Any wall or
// additional polygon blocks regardless of slope.
func (g *Geometry) Probe(x, y float64) Verdict {
	pt := geo.Pt(x, y)
	if !pt.IsFinite() {
		return Verdict{Reason: ReasonNonFinite}
	}
	m := g.model.Load()
	if m == nil {
		return Verdict{Walkable: true}
	}

	gate := g.slope.Load()
	for _, p := range m.Acropolis {
		if !p.Contains(pt) {
			continue
		}
		if gate.sampler == nil {
			return Verdict{Reason: string(LayerAcropolis)}
		}
		if gate.blocks(x, y) {
			return Verdict{Reason: ReasonSlope}
		}
		break
	}

	if layer, hit := m.index.hit(pt); hit {
		return Verdict{Reason: string(layer)}
	}
	return Verdict{Walkable: true}
}

// Snapshot returns the active model, or nil before the first load.
func (g *Geometry) Snapshot() *CityModel {
	return g.model.Load()
}

// Loaded reports whether a model is active.
func (g *Geometry) Loaded() bool {
	return g.model.Load() != nil
}

// CityWallPolygons returns the buffered city wall pieces.
func (g *Geometry) CityWallPolygons() []geo.Polygon {
	return g.layer(func(m *CityModel) []geo.Polygon { return m.CityWall })
}

// LongWallPolygons returns the buffered long wall pieces.
func (g *Geometry) LongWallPolygons() []geo.Polygon {
	return g.layer(func(m *CityModel) []geo.Polygon { return m.LongWalls })
}

// AdditionalPolygons returns the caller-supplied blockers of the model.
func (g *Geometry) AdditionalPolygons() []geo.Polygon {
	return g.layer(func(m *CityModel) []geo.Polygon { return m.Additional })
}

// AcropolisPolygons returns the slope-gated cliff polygons.
func (g *Geometry) AcropolisPolygons() []geo.Polygon {
	return g.layer(func(m *CityModel) []geo.Polygon { return m.Acropolis })
}

// AllPolygons returns every slope-independent blocker.
func (g *Geometry) AllPolygons() []geo.Polygon {
	return g.layer(func(m *CityModel) []geo.Polygon { return m.All })
}

func (g *Geometry) layer(pick func(*CityModel) []geo.Polygon) []geo.Polygon {
	m := g.model.Load()
	if m == nil {
		return nil
	}
	src := pick(m)
	out := make([]geo.Polygon, len(src))
	copy(out, src)
	return out
}

// NamedLocations returns the projected position of every named location.
func (g *Geometry) NamedLocations() map[string]geo.Point {
	m := g.model.Load()
	if m == nil {
		return map[string]geo.Point{}
	}
	out := make(map[string]geo.Point, m.Locations.Len())
	for _, loc := range m.Locations.All() {
		out[loc.Name] = loc.Point
	}
	return out
}

// Locations returns the named locations in registration order.
func (g *Geometry) Locations() []features.Location {
	m := g.model.Load()
	if m == nil {
		return nil
	}
	return m.Locations.All()
}

// Report returns the diagnostics of the active model.
func (g *Geometry) Report() *validation.Report {
	m := g.model.Load()
	if m == nil {
		return validation.NewReport()
	}
	return m.Report
}
