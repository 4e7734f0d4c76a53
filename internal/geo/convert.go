package geo

// ShapeFromUpstream builds a Shape from the platform's loose geometry
// document. Circle centers arrive as {lat, lon} objects; polygon coordinates
// arrive as [[lon, lat], ...] rings and are flipped to the internal (lat, lon)
// order here. A missing type defaults to circle; unknown types produce a
// Shape that contains nothing.
func ShapeFromUpstream(geometry map[string]any) Shape {
	kind, _ := geometry["type"].(string)
	if kind == "" {
		kind = string(ShapeCircle)
	}

	switch ShapeKind(kind) {
	case ShapeCircle:
		center, _ := geometry["center"].(map[string]any)
		return Shape{
			Kind: ShapeCircle,
			Circle: &Circle{
				Center: Point{
					Lat: toFloat(center["lat"]),
					Lon: toFloat(center["lon"]),
				},
				RadiusMeters: toFloat(geometry["radius"]),
			},
		}
	case ShapePolygon:
		rawRings, _ := geometry["coordinates"].([]any)
		rings := make([][]Point, 0, len(rawRings))
		for _, rawRing := range rawRings {
			pairs, _ := rawRing.([]any)
			ring := make([]Point, 0, len(pairs))
			for _, rawPair := range pairs {
				pair, _ := rawPair.([]any)
				if len(pair) < 2 {
					continue
				}
				ring = append(ring, Point{
					Lat: toFloat(pair[1]),
					Lon: toFloat(pair[0]),
				})
			}
			rings = append(rings, CloseRing(ring))
		}
		return Shape{Kind: ShapePolygon, Polygon: &Polygon{Rings: rings}}
	default:
		return Shape{Kind: ShapeKind(kind)}
	}
}

// ShapeToUpstream renders a Shape back into the platform's geometry document,
// flipping polygon rings to [lon, lat] order.
func ShapeToUpstream(s Shape) map[string]any {
	switch s.Kind {
	case ShapeCircle:
		if s.Circle == nil {
			return nil
		}
		return map[string]any{
			"type": "circle",
			"center": map[string]any{
				"lat": s.Circle.Center.Lat,
				"lon": s.Circle.Center.Lon,
			},
			"radius": s.Circle.RadiusMeters,
		}
	case ShapePolygon:
		if s.Polygon == nil {
			return nil
		}
		rings := make([]any, 0, len(s.Polygon.Rings))
		for _, ring := range s.Polygon.Rings {
			pairs := make([]any, 0, len(ring))
			for _, p := range ring {
				pairs = append(pairs, []any{p.Lon, p.Lat})
			}
			rings = append(rings, pairs)
		}
		return map[string]any{
			"type":        "polygon",
			"coordinates": rings,
		}
	default:
		return nil
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
