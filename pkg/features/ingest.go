package features

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/dmaher42/athens/pkg/geo"
	"github.com/dmaher42/athens/pkg/projection"
	"github.com/dmaher42/athens/pkg/validation"
)

// Location is a named point feature projected into the planar frame.
type Location struct {
	Name         string            `json:"name"`
	Point        geo.Point         `json:"point"`
	LatLon       projection.LatLon `json:"latlon"`
	OutsideWalls bool              `json:"outside_walls,omitempty"`
}

// Locations is the named-location registry. A repeated name replaces the
// earlier entry but keeps its original position in iteration order.
type Locations struct {
	order  []string
	byName map[string]Location
}

// NewLocations returns an empty registry.
func NewLocations() *Locations {
	return &Locations{byName: make(map[string]Location)}
}

// Set registers loc under loc.Name.
func (l *Locations) Set(loc Location) {
	if _, ok := l.byName[loc.Name]; !ok {
		l.order = append(l.order, loc.Name)
	}
	l.byName[loc.Name] = loc
}

// Get looks a location up by exact name.
func (l *Locations) Get(name string) (Location, bool) {
	if l == nil {
		return Location{}, false
	}
	loc, ok := l.byName[name]
	return loc, ok
}

// Len returns the number of distinct names.
func (l *Locations) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// All returns the locations in first-registration order.
func (l *Locations) All() []Location {
	if l == nil {
		return nil
	}
	out := make([]Location, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.byName[name])
	}
	return out
}

// Hill is a point feature whose name contains "hill".
type Hill struct {
	Name  string    `json:"name"`
	Point geo.Point `json:"point"`
}

// Ingested is the classified, projected content of a feature collection.
type Ingested struct {
	Locations *Locations
	CityWalls []geo.Polyline
	LongWalls []geo.Polyline
	Hills     []Hill
}

// IngestOptions controls projection and classification.
type IngestOptions struct {
	Projector projection.Projector
	// Rules defaults to DefaultRules when nil.
	Rules []Rule
	// SimplifyTolerance in metres; 0 keeps lines as given.
	SimplifyTolerance float64
}

// Ingest projects and classifies every feature of fc. It never fails:
// features that cannot contribute geometry are reported and skipped.
func Ingest(fc *geojson.FeatureCollection, opts IngestOptions) (*Ingested, *validation.Report) {
	report := validation.NewReport()
	out := &Ingested{Locations: NewLocations()}
	if fc == nil || opts.Projector == nil {
		return out, report
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules
	}

	ignored := 0
	for i, f := range fc.Features {
		path := fmt.Sprintf("features[%d]", i)
		if f == nil || f.Geometry == nil {
			report.AddWarning(skipped(path, "feature has no geometry", nil))
			continue
		}

		switch g := f.Geometry.(type) {
		case orb.Point:
			ingestPoint(out, f.Properties, g, opts.Projector, path, report)
		case orb.LineString:
			ingestLines(out, f.Properties, []orb.LineString{g}, rules, opts, path, report)
		case orb.MultiLineString:
			ingestLines(out, f.Properties, g, rules, opts, path, report)
		default:
			ignored++
		}
	}
	if ignored > 0 {
		report.AddInfo(validation.Result{
			Level:       validation.LevelIngest,
			Message:     "features with unsupported geometry types were ignored",
			ActualValue: ignored,
		})
	}
	return out, report
}

func ingestPoint(out *Ingested, props geojson.Properties, p orb.Point, proj projection.Projector, path string, report *validation.Report) {
	ll := toLatLon(p)
	pt := proj.Project(ll)
	if !pt.IsFinite() {
		report.AddWarning(skipped(path, "point does not project to a finite position", nil))
		return
	}
	name := stringProp(props, KeyName)
	if name == "" {
		return
	}
	out.Locations.Set(Location{
		Name:         name,
		Point:        pt,
		LatLon:       ll,
		OutsideWalls: explicitlyOutside(props),
	})
	if IsHill(name) {
		out.Hills = append(out.Hills, Hill{Name: name, Point: pt})
	}
}

func ingestLines(out *Ingested, props geojson.Properties, lines []orb.LineString, rules []Rule, opts IngestOptions, path string, report *validation.Report) {
	cat := Classify(props, rules)
	if cat == Ignored {
		return
	}
	for j, ls := range lines {
		pl := projectLine(ls, opts.Projector)
		if opts.SimplifyTolerance > 0 {
			pl = simplifyLine(pl, opts.SimplifyTolerance)
		}
		if len(pl.Points) < 2 {
			linePath := path
			if len(lines) > 1 {
				linePath = fmt.Sprintf("%s.geometry.coordinates[%d]", path, j)
			}
			report.AddWarning(validation.Result{
				Level:       validation.LevelIngest,
				Message:     fmt.Sprintf("%s line has fewer than 2 valid points", cat),
				Path:        linePath,
				ActualValue: stringProp(props, KeyName),
			})
			continue
		}
		switch cat {
		case CityWall:
			out.CityWalls = append(out.CityWalls, pl)
		case LongWall:
			out.LongWalls = append(out.LongWalls, pl)
		}
	}
}

// projectLine projects ls and drops positions that do not map to finite
// planar points.
func projectLine(ls orb.LineString, proj projection.Projector) geo.Polyline {
	pts := make([]geo.Point, 0, len(ls))
	for _, p := range ls {
		if pt := proj.Project(toLatLon(p)); pt.IsFinite() {
			pts = append(pts, pt)
		}
	}
	return geo.NewPolyline(pts...)
}

// simplifyLine runs Douglas-Peucker over a planar polyline.
func simplifyLine(pl geo.Polyline, tolerance float64) geo.Polyline {
	if len(pl.Points) < 3 {
		return pl
	}
	ls := make(orb.LineString, len(pl.Points))
	for i, p := range pl.Points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	s, ok := simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString)
	if !ok {
		return pl
	}
	pts := make([]geo.Point, len(s))
	for i, p := range s {
		pts[i] = geo.Pt(p[0], p[1])
	}
	return geo.NewPolyline(pts...)
}
