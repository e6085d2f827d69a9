package geo

import "math"

// Minimum ring resolutions for generated shapes.
const (
	MinEllipseSegments = 12
	MinCircleSegments  = 8
)

// Ellipse returns a polygon approximating an axis-aligned ellipse with the
// given center and radii. The ring has max(MinEllipseSegments, segments)
// vertices evenly spaced in angle, in CCW order. Non-positive or non-finite
// radii yield no polygon.
func Ellipse(center Point, radiusX, radiusY float64, segments int) (Polygon, bool) {
	if !validRadius(radiusX) || !validRadius(radiusY) || !center.IsFinite() {
		return Polygon{}, false
	}
	return NewPolygon(ring(center, radiusX, radiusY, max(MinEllipseSegments, segments))...)
}

// Circle returns a polygon approximating a circle with
// max(MinCircleSegments, segments) vertices in CCW order.
func Circle(center Point, radius float64, segments int) (Polygon, bool) {
	if !validRadius(radius) || !center.IsFinite() {
		return Polygon{}, false
	}
	return NewPolygon(ring(center, radius, radius, max(MinCircleSegments, segments))...)
}

func ring(center Point, rx, ry float64, segments int) []Point {
	pts := make([]Point, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Point{
			X: center.X + rx*math.Cos(angle),
			Y: center.Y + ry*math.Sin(angle),
		}
	}
	return pts
}

func validRadius(r float64) bool {
	return isFinite(r) && r > 0
}
