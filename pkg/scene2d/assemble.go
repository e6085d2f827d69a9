package scene2d

import (
	"math"
	"time"

	"github.com/dmaher42/athens/pkg/collision"
	"github.com/dmaher42/athens/pkg/features"
	"github.com/dmaher42/athens/pkg/geo"
)

// Assemble converts a collision snapshot into a 2D scene. Layers are
// emitted in query order: city wall, long walls, additional, acropolis.
func Assemble(m *collision.CityModel) *Scene2D {
	if m == nil {
		return &Scene2D{Layers: []Layer2D{}, Locations: []Location2D{}}
	}
	sc := &Scene2D{
		Metadata: assembleMetadata(m),
		Layers: []Layer2D{
			assembleLayer(collision.LayerCityWall, false, m.CityWall),
			assembleLayer(collision.LayerLongWall, false, m.LongWalls),
			assembleLayer(collision.LayerAdditional, false, m.Additional),
			assembleLayer(collision.LayerAcropolis, true, m.Acropolis),
		},
		Locations: assembleLocations(m.Locations, m.Hills),
	}
	sc.Bounds = assembleBounds(sc)
	return sc
}

func assembleMetadata(m *collision.CityModel) Metadata {
	md := Metadata{
		SnapshotID:       m.ID,
		BuiltAt:          m.BuiltAt.Format(time.RFC3339),
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		PolygonCount:     len(m.All) + len(m.Acropolis),
		LocationCount:    m.Locations.Len(),
		FallbackCityWall: m.FallbackCityWall,
	}
	if m.Origin != nil {
		md.Origin = &LatLon{Lat: m.Origin.Lat, Lon: m.Origin.Lon}
	}
	if m.Report != nil {
		for _, w := range m.Report.Warnings {
			md.Warnings = append(md.Warnings, w.Message)
		}
	}
	return md
}

func assembleLayer(layer collision.Layer, gated bool, polys []geo.Polygon) Layer2D {
	l := Layer2D{
		Name:       string(layer),
		SlopeGated: gated,
		Polygons:   make([][][2]float64, 0, len(polys)),
	}
	for _, p := range polys {
		l.Polygons = append(l.Polygons, polygonToCoords(p))
		l.Area += p.Area()
	}
	return l
}

func assembleLocations(locs *features.Locations, hills []features.Hill) []Location2D {
	isHill := make(map[string]bool, len(hills))
	for _, h := range hills {
		isHill[h.Name] = true
	}
	all := locs.All()
	result := make([]Location2D, 0, len(all))
	for _, loc := range all {
		result = append(result, Location2D{
			Name:         loc.Name,
			Position:     [2]float64{loc.Point.X, loc.Point.Y},
			Hill:         isHill[loc.Name],
			OutsideWalls: loc.OutsideWalls,
		})
	}
	return result
}

func assembleBounds(sc *Scene2D) Bounds {
	b := Bounds{
		Min: [2]float64{math.Inf(1), math.Inf(1)},
		Max: [2]float64{math.Inf(-1), math.Inf(-1)},
	}
	grow := func(c [2]float64) {
		b.Min[0] = math.Min(b.Min[0], c[0])
		b.Min[1] = math.Min(b.Min[1], c[1])
		b.Max[0] = math.Max(b.Max[0], c[0])
		b.Max[1] = math.Max(b.Max[1], c[1])
	}
	for _, l := range sc.Layers {
		for _, poly := range l.Polygons {
			for _, c := range poly {
				grow(c)
			}
		}
	}
	for _, loc := range sc.Locations {
		grow(loc.Position)
	}
	if math.IsInf(b.Min[0], 1) {
		return Bounds{}
	}
	return b
}

// polygonToCoords converts a geo.Polygon ring to a [][2]float64 list.
func polygonToCoords(p geo.Polygon) [][2]float64 {
	pts := p.Points()
	coords := make([][2]float64, len(pts))
	for i, v := range pts {
		coords[i] = [2]float64{v.X, v.Y}
	}
	return coords
}
