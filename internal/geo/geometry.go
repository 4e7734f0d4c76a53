// Package geo provides the geometry engine for geofence hit-testing.
//
// Internal convention is (lat, lon). The upstream platform stores polygon
// coordinates GIS-style as [lon, lat] pairs; the conversion happens only at
// this package's boundary (see convert.go) and never leaks into the tests
// below.
package geo

import "math"

const earthRadiusMeters = 6371000

// Point is a (latitude, longitude) coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// HaversineDistance returns the great-circle distance between two points in
// meters.
func HaversineDistance(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// PointInCircle reports whether p lies within radiusMeters of center. A point
// exactly on the boundary counts as inside.
func PointInCircle(p, center Point, radiusMeters float64) bool {
	return HaversineDistance(p, center) <= radiusMeters
}

// PointInPolygon runs a ray-casting parity test over the ring vertices. The
// ring is treated as cyclic, so it works on both open and closed rings.
// Points exactly on an edge or vertex are implementation-defined.
func PointInPolygon(p Point, ring []Point) bool {
	inside := false
	n := len(ring)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := ring[i], ring[j]

		if (a.Lon > p.Lon) != (b.Lon > p.Lon) &&
			p.Lat < (b.Lat-a.Lat)*(p.Lon-a.Lon)/(b.Lon-a.Lon)+a.Lat {
			inside = !inside
		}
	}

	return inside
}

// CloseRing returns the ring with its first point appended when the ring is
// not already closed. Nil and single-point rings are returned unchanged; a
// closed copy never shares the caller's backing array.
func CloseRing(ring []Point) []Point {
	if len(ring) < 2 {
		return ring
	}
	if ring[0] == ring[len(ring)-1] {
		return ring
	}

	closed := make([]Point, len(ring)+1)
	copy(closed, ring)
	closed[len(ring)] = ring[0]
	return closed
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
