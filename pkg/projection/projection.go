// Package projection maps geographic coordinates onto the local planar frame
// used by the collision engine.
package projection

import (
	"fmt"
	"math"

	"github.com/dmaher42/athens/pkg/geo"
)

// EarthRadius is the WGS84 equatorial radius in metres.
const EarthRadius = 6378137.0

// LatLon is a geographic coordinate in degrees.
type LatLon struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Valid reports whether the coordinate is finite and within range.
func (ll LatLon) Valid() bool {
	return !math.IsNaN(ll.Lat) && !math.IsNaN(ll.Lon) &&
		ll.Lat >= -90 && ll.Lat <= 90 && ll.Lon >= -180 && ll.Lon <= 180
}

// Projector converts geographic coordinates to planar metres. Implementations
// must be deterministic for a fixed configuration.
type Projector interface {
	Project(ll LatLon) geo.Point
}

// Equirectangular is an origin-centred equirectangular projection with an
// optional counterclockwise rotation of the planar frame.
type Equirectangular struct {
	origin   LatLon
	rotation float64
	cosLat   float64
}

// NewEquirectangular returns a projection centred on origin.
func NewEquirectangular(origin LatLon, rotation float64) (*Equirectangular, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("invalid projection origin %v,%v", origin.Lat, origin.Lon)
	}
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		return nil, fmt.Errorf("invalid projection rotation %v", rotation)
	}
	return &Equirectangular{
		origin:   origin,
		rotation: rotation,
		cosLat:   math.Cos(origin.Lat * math.Pi / 180),
	}, nil
}

// Origin returns the coordinate that projects to (0,0).
func (e *Equirectangular) Origin() LatLon {
	return e.origin
}

// Project returns the planar position of ll. Non-finite input yields a
// non-finite point.
func (e *Equirectangular) Project(ll LatLon) geo.Point {
	p := geo.Point{
		X: EarthRadius * (ll.Lon - e.origin.Lon) * math.Pi / 180 * e.cosLat,
		Y: EarthRadius * (ll.Lat - e.origin.Lat) * math.Pi / 180,
	}
	if e.rotation != 0 {
		p = p.Rotate(e.rotation)
	}
	return p
}

// InferOrigin returns the mean of the valid coordinates in pts.
func InferOrigin(pts []LatLon) (LatLon, bool) {
	var sumLat, sumLon float64
	n := 0
	for _, p := range pts {
		if !p.Valid() {
			continue
		}
		sumLat += p.Lat
		sumLon += p.Lon
		n++
	}
	if n == 0 {
		return LatLon{}, false
	}
	return LatLon{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}, true
}
