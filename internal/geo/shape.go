package geo

// ShapeKind discriminates the geometry union.
type ShapeKind string

const (
	ShapeCircle  ShapeKind = "circle"
	ShapePolygon ShapeKind = "polygon"
)

// Circle is a center point plus radius in meters.
type Circle struct {
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radius"`
}

// Polygon holds one or more closed rings in (lat, lon) order. Containment
// tests use the outer ring only.
type Polygon struct {
	Rings [][]Point `json:"rings"`
}

// Shape is the discriminated circle-or-polygon geometry of a geofence.
// Exactly one payload field is set for a valid shape.
type Shape struct {
	Kind    ShapeKind `json:"kind"`
	Circle  *Circle   `json:"circle,omitempty"`
	Polygon *Polygon  `json:"polygon,omitempty"`
}

// Contains reports whether p falls within the shape. Unknown or malformed
// shapes contain nothing.
func (s Shape) Contains(p Point) bool {
	switch s.Kind {
	case ShapeCircle:
		if s.Circle == nil {
			return false
		}
		return PointInCircle(p, s.Circle.Center, s.Circle.RadiusMeters)
	case ShapePolygon:
		if s.Polygon == nil || len(s.Polygon.Rings) == 0 {
			return false
		}
		return PointInPolygon(p, s.Polygon.Rings[0])
	default:
		return false
	}
}
