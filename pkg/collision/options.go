package collision

import (
	"log/slog"
	"math"

	"github.com/dmaher42/athens/internal/source"
	"github.com/dmaher42/athens/pkg/config"
	"github.com/dmaher42/athens/pkg/features"
	"github.com/dmaher42/athens/pkg/geo"
	"github.com/dmaher42/athens/pkg/projection"
)

// AcropolisName is the named location that anchors the cliff ellipse and
// the fallback city wall.
const AcropolisName = "Acropolis of Athens"

// hillRadiusFactor scales the acropolis minor radius into the hill radius.
const hillRadiusFactor = 0.6

// Radii is an ellipse radius pair. Major runs east-west, Minor north-south.
type Radii struct {
	Major float64 `json:"major"`
	Minor float64 `json:"minor"`
}

// Options are the static construction options of a Geometry. Zero,
// negative and non-finite numbers take their defaults.
type Options struct {
	// GeoJSONURL is fetched when Load is given no collection, bytes or URL.
	GeoJSONURL string
	// Origin of the projection when Load supplies none.
	Origin *projection.LatLon
	// Rotation of the planar frame in radians, counterclockwise.
	Rotation float64

	CityWallBuffer  float64
	LongWallBuffer  float64
	CityPointRadius float64
	SlopeThreshold  float64
	AcropolisRadii  Radii

	CapSegments     int
	EllipseSegments int
	CircleSegments  int

	// SimplifyTolerance in metres; 0 disables line simplification.
	SimplifyTolerance float64

	// Additional hard blockers in planar metres, added on every load.
	Additional []geo.Polygon
	// Rules overrides features.DefaultRules.
	Rules []features.Rule

	Fetcher source.Fetcher
	Logger  *slog.Logger
}

// DefaultOptions returns the options with every default filled in.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

// OptionsFromConfig maps project configuration onto Options.
func OptionsFromConfig(c *config.Config) Options {
	g := c.Geometry
	return Options{
		GeoJSONURL:        c.Source.GeoJSONURL,
		Origin:            c.Origin,
		Rotation:          c.Rotation,
		CityWallBuffer:    g.CityWallBuffer,
		LongWallBuffer:    g.LongWallBuffer,
		CityPointRadius:   g.CityPointRadius,
		SlopeThreshold:    g.SlopeThreshold,
		AcropolisRadii:    Radii{Major: g.AcropolisRadii.Major, Minor: g.AcropolisRadii.Minor},
		CapSegments:       g.CapSegments,
		EllipseSegments:   g.EllipseSegments,
		CircleSegments:    g.CircleSegments,
		SimplifyTolerance: g.SimplifyTolerance,
	}
}

func (o Options) withDefaults() Options {
	d := config.Default().Geometry
	o.CityWallBuffer = orDefault(o.CityWallBuffer, d.CityWallBuffer)
	o.LongWallBuffer = orDefault(o.LongWallBuffer, d.LongWallBuffer)
	o.CityPointRadius = orDefault(o.CityPointRadius, d.CityPointRadius)
	o.SlopeThreshold = orDefault(o.SlopeThreshold, d.SlopeThreshold)
	o.AcropolisRadii.Major = orDefault(o.AcropolisRadii.Major, d.AcropolisRadii.Major)
	o.AcropolisRadii.Minor = orDefault(o.AcropolisRadii.Minor, d.AcropolisRadii.Minor)
	if o.CapSegments <= 0 {
		o.CapSegments = d.CapSegments
	}
	if o.EllipseSegments <= 0 {
		o.EllipseSegments = d.EllipseSegments
	}
	if o.CircleSegments <= 0 {
		o.CircleSegments = d.CircleSegments
	}
	if !finite(o.SimplifyTolerance) || o.SimplifyTolerance < 0 {
		o.SimplifyTolerance = 0
	}
	if !finite(o.Rotation) {
		o.Rotation = 0
	}
	return o
}

func orDefault(v, def float64) float64 {
	if !finite(v) || v <= 0 {
		return def
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
