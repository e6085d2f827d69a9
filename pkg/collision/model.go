package collision

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmaher42/athens/pkg/features"
	"github.com/dmaher42/athens/pkg/geo"
	"github.com/dmaher42/athens/pkg/projection"
	"github.com/dmaher42/athens/pkg/validation"
)

// CityModel is one immutable load result. Geometry swaps whole models, so a
// reader holding a *CityModel keeps a consistent view. Callers must not
// modify its slices.
type CityModel struct {
	ID      string
	BuiltAt time.Time
	// Origin is nil when Load was given a custom projector.
	Origin *projection.LatLon

	CityWall   []geo.Polygon
	LongWalls  []geo.Polygon
	Additional []geo.Polygon
	Acropolis  []geo.Polygon
	// All is CityWall, LongWalls and Additional: the slope-independent
	// blockers. Acropolis polygons are slope gated and kept apart.
	All []geo.Polygon

	Locations *features.Locations
	Hills     []features.Hill
	// FallbackCityWall is set when the city wall was synthesised from
	// named locations.
	FallbackCityWall bool

	Report *validation.Report

	index *blockerIndex
}

// Counts returns the polygon count of each layer.
func (m *CityModel) Counts() map[Layer]int {
	return map[Layer]int{
		LayerCityWall:   len(m.CityWall),
		LayerLongWall:   len(m.LongWalls),
		LayerAdditional: len(m.Additional),
		LayerAcropolis:  len(m.Acropolis),
	}
}

// buildModel turns ingested features into polygons. The order matters: the
// city wall fallback reads the locations registered from points.
func buildModel(in *features.Ingested, opts Options, report *validation.Report) *CityModel {
	m := &CityModel{
		ID:        uuid.NewString(),
		BuiltAt:   time.Now().UTC(),
		Locations: in.Locations,
		Hills:     in.Hills,
		Report:    report,
	}

	m.CityWall, m.FallbackCityWall = buildCityWall(in, opts, report)
	for _, line := range in.LongWalls {
		m.LongWalls = append(m.LongWalls, geo.BufferPolyline(line, opts.LongWallBuffer, false, opts.CapSegments)...)
	}
	m.Acropolis = buildAcropolis(in, opts, report)
	for _, p := range opts.Additional {
		if !p.IsEmpty() {
			m.Additional = append(m.Additional, p)
		}
	}

	m.All = make([]geo.Polygon, 0, len(m.CityWall)+len(m.LongWalls)+len(m.Additional))
	m.All = append(m.All, m.CityWall...)
	m.All = append(m.All, m.LongWalls...)
	m.All = append(m.All, m.Additional...)
	m.index = newBlockerIndex(
		layered{LayerCityWall, m.CityWall},
		layered{LayerLongWall, m.LongWalls},
		layered{LayerAdditional, m.Additional},
	)
	return m
}

func buildCityWall(in *features.Ingested, opts Options, report *validation.Report) ([]geo.Polygon, bool) {
	if len(in.CityWalls) > 0 {
		var out []geo.Polygon
		for _, line := range in.CityWalls {
			line, closed := closeRing(line)
			out = append(out, geo.BufferPolyline(line, opts.CityWallBuffer, closed, opts.CapSegments)...)
		}
		return out, false
	}

	hull, ok := fallbackHull(in.Locations, opts.CityPointRadius, report)
	if !ok {
		return nil, false
	}
	report.AddInfo(validation.Result{
		Level:       validation.LevelGeometry,
		Message:     "no city wall lines; synthesised the city wall from the hull of named locations",
		ActualValue: len(hull),
	})
	return geo.BufferPolyline(geo.NewPolyline(hull...), opts.CityWallBuffer, true, opts.CapSegments), true
}

// closeRing reports whether line repeats its first point at the end and
// returns it without the repeat.
func closeRing(line geo.Polyline) (geo.Polyline, bool) {
	pts := line.Points
	n := len(pts)
	if n < 4 {
		return line, false
	}
	first, last := pts[0], pts[n-1]
	if first.Distance(last) > geo.DuplicateEpsilon {
		return line, false
	}
	return geo.NewPolyline(pts[:n-1]...), true
}

// fallbackHull returns the convex hull of the named locations near the
// reference point, excluding those marked outside the walls.
func fallbackHull(locs *features.Locations, radius float64, report *validation.Report) ([]geo.Point, bool) {
	all := locs.All()
	if len(all) == 0 {
		report.AddWarning(validation.Result{
			Level:   validation.LevelGeometry,
			Message: "no city wall lines and no named locations; city wall omitted",
		})
		return nil, false
	}

	ref, fromAcropolis := referencePoint(locs, all)
	candidates := make([]geo.Point, 0, len(all))
	for _, loc := range all {
		if loc.OutsideWalls {
			continue
		}
		if loc.Point.Distance(ref) <= radius {
			candidates = append(candidates, loc.Point)
		}
	}
	if len(candidates) < 3 {
		report.AddWarning(validation.Result{
			Level:       validation.LevelGeometry,
			Message:     "fewer than 3 named locations inside the city radius; city wall omitted",
			ActualValue: len(candidates),
			Expected:    ">= 3",
		})
		return nil, false
	}
	hull := geo.ConvexHull(candidates)
	if len(hull) < 3 {
		report.AddWarning(validation.Result{
			Level:   validation.LevelGeometry,
			Message: "city wall candidates are collinear; city wall omitted",
		})
		return nil, false
	}
	if !fromAcropolis {
		report.AddInfo(validation.Result{
			Level:   validation.LevelGeometry,
			Message: fmt.Sprintf("%q not found; city radius measured from the centroid of named locations", AcropolisName),
		})
	}
	return hull, true
}

func referencePoint(locs *features.Locations, all []features.Location) (geo.Point, bool) {
	if acro, ok := locs.Get(AcropolisName); ok {
		return acro.Point, true
	}
	pts := make([]geo.Point, len(all))
	for i, loc := range all {
		pts[i] = loc.Point
	}
	c, _ := geo.Centroid(pts)
	return c, false
}

func buildAcropolis(in *features.Ingested, opts Options, report *validation.Report) []geo.Polygon {
	var out []geo.Polygon
	if acro, ok := in.Locations.Get(AcropolisName); ok {
		if e, ok := geo.Ellipse(acro.Point, opts.AcropolisRadii.Major, opts.AcropolisRadii.Minor, opts.EllipseSegments); ok {
			out = append(out, e)
		}
	} else {
		report.AddWarning(validation.Result{
			Level:   validation.LevelGeometry,
			Message: fmt.Sprintf("%q not found; no acropolis cliff", AcropolisName),
		})
	}

	r := hillRadiusFactor * opts.AcropolisRadii.Minor
	for _, h := range in.Hills {
		if c, ok := geo.Circle(h.Point, r, opts.CircleSegments); ok {
			out = append(out, c)
		}
	}
	return out
}
