package geo

import "sort"

// ConvexHull returns the convex hull of pts in counterclockwise order using
// Andrew's monotone chain. Non-finite points are discarded first; when fewer
// than three valid points remain they are returned as-is without computing a
// hull, so callers must check the length before treating the result as a ring.
// Collinear input collapses to its two extreme points.
func ConvexHull(pts []Point) []Point {
	valid := make([]Point, 0, len(pts))
	for _, p := range pts {
		if p.IsFinite() {
			valid = append(valid, p)
		}
	}
	if len(valid) < 3 {
		return valid
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].X != valid[j].X {
			return valid[i].X < valid[j].X
		}
		return valid[i].Y < valid[j].Y
	})

	turn := func(o, a, b Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	lower := make([]Point, 0, len(valid))
	for _, p := range valid {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]Point, 0, len(valid))
	for i := len(valid) - 1; i >= 0; i-- {
		p := valid[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}
