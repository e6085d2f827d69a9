package features

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaher42/athens/pkg/projection"
)

const athensFixture = "../../examples/athens/athens.geojson"

var athensOrigin = projection.LatLon{Lat: 37.9715379, Lon: 23.7266531}

func loadAthens(t *testing.T) *geojson.FeatureCollection {
	t.Helper()
	data, err := os.ReadFile(athensFixture)
	require.NoError(t, err)
	fc, report, err := Decode(data)
	require.NoError(t, err)
	require.True(t, report.Valid)
	return fc
}

func athensProjector(t *testing.T) projection.Projector {
	t.Helper()
	p, err := projection.NewEquirectangular(athensOrigin, 0)
	require.NoError(t, err)
	return p
}

func feature(g orb.Geometry, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(g)
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

func TestDecodeAthens(t *testing.T) {
	fc := loadAthens(t)
	assert.Len(t, fc.Features, 19)
	assert.Len(t, PointCoordinates(fc), 14)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"missing features": `{"type":"FeatureCollection"}`,
		"features null":    `{"features":null}`,
		"features object":  `{"features":{}}`,
		"non-object item":  `{"features":[1]}`,
		"not json":         `this is not json`,
		"top-level array":  `[]`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedCollection), "got %v", err)
		})
	}
}

func TestDecodeSkipsBadFeatures(t *testing.T) {
	in := `{"features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[23.72,37.97]},"properties":{"name":"Agora"}},
		{"type":"Feature","geometry":null,"properties":{"name":"Nowhere"}},
		{"type":"Feature","properties":{"name":"Missing"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":"x"},"properties":{}}
	]}`
	fc, report, err := Decode([]byte(in))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Agora", fc.Features[0].Properties["name"])
	assert.Len(t, report.Warnings, 3)
	assert.Equal(t, "features[1]", report.Warnings[0].Path)
}

func TestDecodeDropsShortPositions(t *testing.T) {
	in := `{"features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[23.72,37.97]},"properties":{"name":"Agora"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[]},"properties":{"name":"Broken"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[23.7]},"properties":{"name":"Half"}},
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[23.70,37.96],[],[23.71,37.95]]},"properties":{"kind":"long_wall"}},
		{"type":"Feature","geometry":{"type":"MultiLineString","coordinates":[[[23.70,37.96],[23.71,37.95]],[[23.72],[23.73,37.94],[23.74,37.93]]]},"properties":{"kind":"long_wall"}}
	]}`
	fc, report, err := Decode([]byte(in))
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "Agora", fc.Features[0].Properties["name"])

	ls, ok := fc.Features[1].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{23.70, 37.96}, {23.71, 37.95}}, ls)

	mls, ok := fc.Features[2].Geometry.(orb.MultiLineString)
	require.True(t, ok)
	assert.Len(t, mls[0], 2)
	assert.Equal(t, orb.LineString{{23.73, 37.94}, {23.74, 37.93}}, mls[1])

	paths := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		paths = append(paths, w.Path)
	}
	assert.Equal(t, []string{
		"features[1].geometry.coordinates",
		"features[2].geometry.coordinates",
		"features[3].geometry.coordinates[1]",
		"features[4].geometry.coordinates[1][0]",
	}, paths)

	pts := PointCoordinates(fc)
	require.Len(t, pts, 1)
	assert.InDelta(t, 37.97, pts[0].Lat, 1e-9)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		props geojson.Properties
		want  Category
	}{
		{"kind city wall", geojson.Properties{"kind": "City_Wall"}, CityWall},
		{"kind fortification", geojson.Properties{"kind": "fortification"}, CityWall},
		{"kind corridor", geojson.Properties{"kind": "wall_corridor"}, LongWall},
		{"kind long wall", geojson.Properties{"kind": "north_long_wall"}, LongWall},
		{"name city wall", geojson.Properties{"name": "Themistoclean City Wall"}, CityWall},
		{"name long wall", geojson.Properties{"name": "Northern Long Wall"}, LongWall},
		{"name phaleric", geojson.Properties{"name": "Phaleric Wall"}, LongWall},
		{"name makra", geojson.Properties{"name": "Makra Teiche"}, LongWall},
		{"kind wins over name", geojson.Properties{"kind": "long_wall", "name": "City Wall"}, LongWall},
		{"unknown kind blocks name", geojson.Properties{"kind": "road", "name": "City Wall Road"}, Ignored},
		{"empty kind falls back", geojson.Properties{"kind": "", "name": "City Wall"}, CityWall},
		{"non-string kind falls back", geojson.Properties{"kind": 3, "name": "Long Wall"}, LongWall},
		{"nothing", geojson.Properties{"name": "Panathenaic Way"}, Ignored},
		{"nil", nil, Ignored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.props, DefaultRules))
		})
	}
}

func TestClassifyCustomRules(t *testing.T) {
	rules := append([]Rule{{KeyKind, "palisade", CityWall}}, DefaultRules...)
	assert.Equal(t, CityWall, Classify(geojson.Properties{"kind": "palisade"}, rules))
	assert.Equal(t, Ignored, Classify(geojson.Properties{"kind": "palisade"}, DefaultRules))
}

func TestIngestAthens(t *testing.T) {
	fc := loadAthens(t)
	in, report := Ingest(fc, IngestOptions{Projector: athensProjector(t)})

	assert.Equal(t, 13, in.Locations.Len())
	assert.Empty(t, in.CityWalls)
	assert.Len(t, in.LongWalls, 4)
	assert.Len(t, in.Hills, 4)
	assert.True(t, report.Valid)
	require.Len(t, report.Info, 1)
	assert.Equal(t, 1, report.Info[0].ActualValue)

	acro, ok := in.Locations.Get("Acropolis of Athens")
	require.True(t, ok)
	assert.InDelta(t, 0, acro.Point.X, 1e-6)
	assert.InDelta(t, 0, acro.Point.Y, 1e-6)
	assert.False(t, acro.OutsideWalls)

	piraeus, ok := in.Locations.Get("Port of Piraeus")
	require.True(t, ok)
	assert.True(t, piraeus.OutsideWalls)
	assert.Less(t, piraeus.Point.X, -5000.0)

	// The Northern Long Wall is listed first and runs south-west.
	first := in.LongWalls[0]
	require.Len(t, first.Points, 2)
	assert.Less(t, first.Points[1].X, first.Points[0].X)
	assert.Less(t, first.Points[1].Y, first.Points[0].Y)
}

func TestIngestMultiLineStringParts(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(feature(orb.MultiLineString{
		{{23.70, 37.96}, {23.69, 37.95}},
		{{23.69, 37.95}, {23.68, 37.94}},
		{{23.68, 37.94}, {23.67, 37.93}},
	}, map[string]any{"name": "City Wall"}))

	in, _ := Ingest(fc, IngestOptions{Projector: athensProjector(t)})
	assert.Len(t, in.CityWalls, 3)
	assert.Empty(t, in.LongWalls)
}

func TestIngestDegenerateLine(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(feature(orb.LineString{{23.70, 37.96}, {math.NaN(), 37.95}}, map[string]any{"kind": "long_wall"}))

	in, report := Ingest(fc, IngestOptions{Projector: athensProjector(t)})
	assert.Empty(t, in.LongWalls)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "long_wall")
}

func TestIngestLastNameWins(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(feature(orb.Point{23.72, 37.97}, map[string]any{"name": "Stoa"}))
	fc.Append(feature(orb.Point{23.73, 37.98}, map[string]any{"name": "Bouleuterion"}))
	fc.Append(feature(orb.Point{23.74, 37.99}, map[string]any{"name": "Stoa", "within_walls": false}))

	in, _ := Ingest(fc, IngestOptions{Projector: athensProjector(t)})
	all := in.Locations.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Stoa", all[0].Name)
	assert.Equal(t, 23.74, all[0].LatLon.Lon)
	assert.True(t, all[0].OutsideWalls)
	assert.Equal(t, "Bouleuterion", all[1].Name)
}

func TestIngestWithinWallsStrictBool(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(feature(orb.Point{23.72, 37.97}, map[string]any{"name": "A", "within_walls": "false"}))
	fc.Append(feature(orb.Point{23.72, 37.97}, map[string]any{"name": "B", "within_walls": 0}))
	fc.Append(feature(orb.Point{23.72, 37.97}, map[string]any{"name": "C", "within_walls": false}))

	in, _ := Ingest(fc, IngestOptions{Projector: athensProjector(t)})
	a, _ := in.Locations.Get("A")
	b, _ := in.Locations.Get("B")
	c, _ := in.Locations.Get("C")
	assert.False(t, a.OutsideWalls)
	assert.False(t, b.OutsideWalls)
	assert.True(t, c.OutsideWalls)
}

func TestIngestUnnamedPointsAreNotRegistered(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(feature(orb.Point{23.72, 37.97}, nil))
	fc.Append(feature(orb.Point{23.72, 37.97}, map[string]any{"name": ""}))

	in, _ := Ingest(fc, IngestOptions{Projector: athensProjector(t)})
	assert.Zero(t, in.Locations.Len())
}

func TestIngestSimplify(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(feature(orb.LineString{
		{23.700, 37.960},
		{23.705, 37.960},
		{23.710, 37.960},
	}, map[string]any{"kind": "city_wall"}))

	p := athensProjector(t)
	in, _ := Ingest(fc, IngestOptions{Projector: p})
	require.Len(t, in.CityWalls, 1)
	assert.Len(t, in.CityWalls[0].Points, 3)

	in, _ = Ingest(fc, IngestOptions{Projector: p, SimplifyTolerance: 1})
	require.Len(t, in.CityWalls, 1)
	assert.Len(t, in.CityWalls[0].Points, 2)
}

func TestIngestNilInputs(t *testing.T) {
	in, report := Ingest(nil, IngestOptions{Projector: athensProjector(t)})
	assert.Zero(t, in.Locations.Len())
	assert.True(t, report.Valid)

	in, _ = Ingest(geojson.NewFeatureCollection(), IngestOptions{})
	assert.Zero(t, in.Locations.Len())
}

func TestIsHill(t *testing.T) {
	assert.True(t, IsHill("Areopagus Hill"))
	assert.True(t, IsHill("HILL of the Nymphs"))
	assert.False(t, IsHill("Agora"))
}
