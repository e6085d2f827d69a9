package geo

// Polyline is an ordered sequence of points forming a path.
type Polyline struct {
	Points []Point
}

// NewPolyline creates a polyline from a list of points.
func NewPolyline(pts ...Point) Polyline {
	return Polyline{Points: pts}
}

// Finite returns a copy of the polyline without non-finite points.
func (pl Polyline) Finite() Polyline {
	out := make([]Point, 0, len(pl.Points))
	for _, p := range pl.Points {
		if p.IsFinite() {
			out = append(out, p)
		}
	}
	return Polyline{Points: out}
}
