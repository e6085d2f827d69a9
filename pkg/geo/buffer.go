package geo

// BufferPolyline approximates the region within radius of a polyline as a
// set of convex pieces: one rectangle per segment plus polygonal end caps.
//
// An open line is capped only at its two endpoints; interior joints are left
// uncapped, so sharp turns keep a small uncovered wedge on the outer side.
// A closed line also buffers the edge from the last point back to the first
// and caps every vertex.
//
// Non-finite points are dropped first. Zero-length segments are skipped.
// The result is empty when radius <= 0 or fewer than two points remain.
func BufferPolyline(line Polyline, radius float64, closed bool, capSegments int) []Polygon {
	if !validRadius(radius) {
		return nil
	}
	pts := line.Finite().Points
	n := len(pts)
	if n < 2 {
		return nil
	}

	pieces := make([]Polygon, 0, n+2)
	for i := 0; i < n-1; i++ {
		if rect, ok := segmentRect(pts[i], pts[i+1], radius); ok {
			pieces = append(pieces, rect)
		}
	}
	if closed {
		if rect, ok := segmentRect(pts[n-1], pts[0], radius); ok {
			pieces = append(pieces, rect)
		}
		for _, p := range pts {
			if c, ok := Circle(p, radius, capSegments); ok {
				pieces = append(pieces, c)
			}
		}
		return pieces
	}

	for _, p := range []Point{pts[0], pts[n-1]} {
		if c, ok := Circle(p, radius, capSegments); ok {
			pieces = append(pieces, c)
		}
	}
	return pieces
}

// segmentRect returns the rectangle of half-width radius around segment ab.
func segmentRect(a, b Point, radius float64) (Polygon, bool) {
	d := b.Sub(a)
	l := d.Length()
	if !isFinite(l) || l < 1e-12 {
		return Polygon{}, false
	}
	off := d.Normalize().Perp().Scale(radius)
	return NewPolygon(
		a.Sub(off),
		b.Sub(off),
		b.Add(off),
		a.Add(off),
	)
}
