package geo

import "math"

// DuplicateEpsilon is the per-axis distance under which consecutive ring
// points are considered the same point.
const DuplicateEpsilon = 1e-6

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Contains reports whether p lies inside or on the box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Width returns the X extent of the box.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the Y extent of the box.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Polygon is a closed ring of at least three points with a cached bounding
// box. The closing edge from the last point back to the first is implicit.
// A Polygon is immutable once built; the zero value is an empty polygon.
type Polygon struct {
	points []Point
	bbox   BBox
}

// NewPolygon builds a polygon from ring points. Non-finite points and
// consecutive near-duplicates (within DuplicateEpsilon) are dropped, as is a
// trailing point repeating the first. The second result is false when fewer
// than three points survive.
func NewPolygon(pts ...Point) (Polygon, bool) {
	ring := make([]Point, 0, len(pts))
	for _, p := range pts {
		if !p.IsFinite() {
			continue
		}
		if n := len(ring); n > 0 && samePoint(ring[n-1], p) {
			continue
		}
		ring = append(ring, p)
	}
	for len(ring) > 1 && samePoint(ring[0], ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Polygon{}, false
	}
	return Polygon{points: ring, bbox: boundsOf(ring)}, true
}

// MustPolygon is like NewPolygon but panics on degenerate input.
// Intended for fixtures and tests.
func MustPolygon(pts ...Point) Polygon {
	p, ok := NewPolygon(pts...)
	if !ok {
		panic("geo: degenerate polygon")
	}
	return p
}

func samePoint(a, b Point) bool {
	return math.Abs(a.X-b.X) <= DuplicateEpsilon && math.Abs(a.Y-b.Y) <= DuplicateEpsilon
}

func boundsOf(pts []Point) BBox {
	b := BBox{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, v := range pts[1:] {
		b.MinX = math.Min(b.MinX, v.X)
		b.MaxX = math.Max(b.MaxX, v.X)
		b.MinY = math.Min(b.MinY, v.Y)
		b.MaxY = math.Max(b.MaxY, v.Y)
	}
	return b
}

// Len returns the number of vertices.
func (p Polygon) Len() int {
	return len(p.points)
}

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.points) < 3
}

// Points returns a copy of the ring.
func (p Polygon) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)
	return out
}

// BoundingBox returns the cached axis-aligned bounding box.
func (p Polygon) BoundingBox() BBox {
	return p.bbox
}

// SignedArea returns the signed area using the shoelace formula.
// Positive for counterclockwise winding, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p.points)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.points[i].X * p.points[j].Y
		area -= p.points[j].X * p.points[i].Y
	}
	return area / 2
}

// Area returns the unsigned area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the area centroid of the polygon, or the vertex average
// when the polygon has no area.
func (p Polygon) Centroid() Point {
	n := len(p.points)
	if n == 0 {
		return Point{}
	}
	a := p.SignedArea()
	if math.Abs(a) < 1e-12 {
		c, _ := Centroid(p.points)
		return c
	}
	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := p.points[i].X*p.points[j].Y - p.points[j].X*p.points[i].Y
		cx += (p.points[i].X + p.points[j].X) * cross
		cy += (p.points[i].Y + p.points[j].Y) * cross
	}
	f := 1.0 / (6.0 * a)
	return Point{cx * f, cy * f}
}

// Contains reports whether pt is inside the polygon. The cached bounding box
// rejects distant points before the even-odd crossing test runs.
//
// Points exactly on an edge are classified by the half-open comparison
// (yi > y) != (yj > y); this is an approximation, not a robust on-boundary
// classifier.
func (p Polygon) Contains(pt Point) bool {
	n := len(p.points)
	if n < 3 || !p.bbox.Contains(pt) {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := p.points[i]
		vj := p.points[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) &&
			pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
