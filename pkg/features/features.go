// Package features decodes GeoJSON feature collections and sorts their
// features into the inputs of the collision model: named locations, city
// wall lines, long wall lines and hill points.
package features

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dmaher42/athens/pkg/projection"
	"github.com/dmaher42/athens/pkg/validation"
)

// ErrMalformedCollection is returned when the input is not a feature
// collection with a features array.
var ErrMalformedCollection = errors.New("malformed feature collection")

// Property keys read from feature properties.
const (
	KeyName        = "name"
	KeyKind        = "kind"
	KeyWithinWalls = "within_walls"
)

type rawCollection struct {
	Features []json.RawMessage `json:"features"`
}

type rawFeature struct {
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type rawGeometry struct {
	Coordinates json.RawMessage `json:"coordinates"`
}

// Decode parses raw GeoJSON bytes. The collection as a whole must be
// well-formed; a feature whose geometry cannot be decoded is dropped and
// reported as a warning instead of failing the whole collection.
func Decode(data []byte) (*geojson.FeatureCollection, *validation.Report, error) {
	if err := validateStructure(data); err != nil {
		return nil, nil, err
	}

	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
	}

	report := validation.NewReport()
	fc := geojson.NewFeatureCollection()
	for i, msg := range raw.Features {
		path := fmt.Sprintf("features[%d]", i)

		var rf rawFeature
		if err := json.Unmarshal(msg, &rf); err != nil {
			report.AddWarning(skipped(path, "feature is not decodable", err))
			continue
		}
		if len(rf.Geometry) == 0 || string(rf.Geometry) == "null" {
			report.AddWarning(skipped(path, "feature has no geometry", nil))
			continue
		}
		g, err := geojson.UnmarshalGeometry(rf.Geometry)
		if err != nil || g.Geometry() == nil {
			report.AddWarning(skipped(path, "feature geometry is not decodable", err))
			continue
		}

		geom, ok := dropShortPositions(rf.Geometry, g.Geometry(), path, report)
		if !ok {
			continue
		}

		f := geojson.NewFeature(geom)
		if rf.Properties != nil {
			f.Properties = rf.Properties
		}
		fc.Append(f)
	}
	return fc, report, nil
}

// dropShortPositions removes positions with fewer than two coordinates,
// which the geometry decoder would otherwise read as 0,0. A Point without a
// full position is dropped entirely.
func dropShortPositions(data json.RawMessage, geom orb.Geometry, path string, report *validation.Report) (orb.Geometry, bool) {
	var rg rawGeometry
	if err := json.Unmarshal(data, &rg); err != nil {
		return geom, true
	}
	coordsPath := path + ".geometry.coordinates"

	switch g := geom.(type) {
	case orb.Point:
		var pos []json.RawMessage
		if err := json.Unmarshal(rg.Coordinates, &pos); err != nil || len(pos) < 2 {
			report.AddWarning(shortPosition(coordsPath, len(pos)))
			return nil, false
		}
	case orb.LineString:
		var raw [][]json.RawMessage
		if err := json.Unmarshal(rg.Coordinates, &raw); err != nil {
			return geom, true
		}
		return keepFullPositions(g, raw, coordsPath, report), true
	case orb.MultiLineString:
		var raw [][][]json.RawMessage
		if err := json.Unmarshal(rg.Coordinates, &raw); err != nil || len(raw) != len(g) {
			return geom, true
		}
		out := make(orb.MultiLineString, len(g))
		for j, ls := range g {
			out[j] = keepFullPositions(ls, raw[j], fmt.Sprintf("%s[%d]", coordsPath, j), report)
		}
		return out, true
	}
	return geom, true
}

func keepFullPositions(ls orb.LineString, raw [][]json.RawMessage, path string, report *validation.Report) orb.LineString {
	if len(raw) != len(ls) {
		return ls
	}
	out := make(orb.LineString, 0, len(ls))
	for k, pos := range raw {
		if len(pos) < 2 {
			report.AddWarning(shortPosition(fmt.Sprintf("%s[%d]", path, k), len(pos)))
			continue
		}
		out = append(out, ls[k])
	}
	return out
}

func shortPosition(path string, n int) validation.Result {
	return validation.Result{
		Level:       validation.LevelIngest,
		Message:     "position has fewer than 2 coordinates",
		Path:        path,
		ActualValue: n,
		Expected:    "[lon, lat]",
	}
}

func skipped(path, msg string, err error) validation.Result {
	r := validation.Result{
		Level:   validation.LevelIngest,
		Message: msg,
		Path:    path,
	}
	if err != nil {
		r.ActualValue = err.Error()
	}
	return r
}

// PointCoordinates returns the coordinates of every Point feature in
// collection order, as used for origin inference.
func PointCoordinates(fc *geojson.FeatureCollection) []projection.LatLon {
	if fc == nil {
		return nil
	}
	var out []projection.LatLon
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		if p, ok := f.Geometry.(orb.Point); ok {
			out = append(out, toLatLon(p))
		}
	}
	return out
}

// toLatLon converts a GeoJSON [lon, lat] position.
func toLatLon(p orb.Point) projection.LatLon {
	return projection.LatLon{Lat: p.Lat(), Lon: p.Lon()}
}

// stringProp returns props[key] when it is a string.
func stringProp(props geojson.Properties, key string) string {
	if props == nil {
		return ""
	}
	s, _ := props[key].(string)
	return s
}

// explicitlyOutside reports whether within_walls is the boolean false.
// Any other value, including the string "false", leaves the point eligible.
func explicitlyOutside(props geojson.Properties) bool {
	if props == nil {
		return false
	}
	v, ok := props[KeyWithinWalls].(bool)
	return ok && !v
}
