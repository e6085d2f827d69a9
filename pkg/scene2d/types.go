package scene2d

// Scene2D is the top-down export of one collision snapshot, in planar
// metres, for an SVG renderer or offline inspection.
type Scene2D struct {
	Metadata  Metadata     `json:"metadata"`
	Bounds    Bounds       `json:"bounds"`
	Layers    []Layer2D    `json:"layers"`
	Locations []Location2D `json:"locations"`
}

// Metadata holds snapshot-level summary data.
type Metadata struct {
	SnapshotID       string   `json:"snapshot_id"`
	BuiltAt          string   `json:"built_at"`
	GeneratedAt      string   `json:"generated_at"`
	Origin           *LatLon  `json:"origin,omitempty"`
	PolygonCount     int      `json:"polygon_count"`
	LocationCount    int      `json:"location_count"`
	FallbackCityWall bool     `json:"fallback_city_wall"`
	Warnings         []string `json:"warnings,omitempty"`
}

// LatLon is the projection origin.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the extent of every exported polygon and location.
type Bounds struct {
	Min [2]float64 `json:"min"`
	Max [2]float64 `json:"max"`
}

// Layer2D is one polygon collection. SlopeGated layers block only where
// the terrain is too steep; the rest always block. Area sums the piece
// areas, so overlapping pieces are counted twice.
type Layer2D struct {
	Name       string         `json:"name"`
	SlopeGated bool           `json:"slope_gated"`
	Area       float64        `json:"area_m2"`
	Polygons   [][][2]float64 `json:"polygons"`
}

// Location2D is a named point.
type Location2D struct {
	Name         string     `json:"name"`
	Position     [2]float64 `json:"position"`
	Hill         bool       `json:"hill,omitempty"`
	OutsideWalls bool       `json:"outside_walls,omitempty"`
}
