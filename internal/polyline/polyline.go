// Package polyline implements the Google encoded polyline format used by the
// telematics platform for trip routes: per-coordinate deltas, zig-zag signed
// encoding, 5-bit groups offset by 63, scaled to five decimal digits.
package polyline

import "strings"

const scale = 1e5

// Point is a single route coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Decode converts an encoded polyline into coordinates. An empty string
// decodes to an empty slice. Input that ends mid-value or mid-pair loses the
// trailing partial point; everything decoded before it is returned.
func Decode(encoded string) []Point {
	points := []Point{}
	var lat, lng int64

	index := 0
	for index < len(encoded) {
		dLat, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		lat += dLat
		index = next

		dLng, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		lng += dLng
		index = next

		points = append(points, Point{
			Latitude:  float64(lat) / scale,
			Longitude: float64(lng) / scale,
		})
	}

	return points
}

// Encode converts coordinates into an encoded polyline string.
func Encode(points []Point) string {
	var sb strings.Builder
	var prevLat, prevLng int64

	for _, p := range points {
		lat := round(p.Latitude * scale)
		lng := round(p.Longitude * scale)

		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)

		prevLat = lat
		prevLng = lng
	}

	return sb.String()
}

// decodeValue reads one zig-zag value starting at index. ok is false when the
// input runs out before the value's final 5-bit group.
func decodeValue(encoded string, index int) (int64, int, bool) {
	var result int64
	var shift uint

	for index < len(encoded) {
		b := int64(encoded[index]) - 63
		index++

		result |= (b & 0x1f) << shift
		shift += 5

		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), index, true
			}
			return result >> 1, index, true
		}
	}

	return 0, index, false
}

func encodeValue(sb *strings.Builder, value int64) {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		sb.WriteByte(byte((0x20|(value&0x1f))+63) & 0xff)
		value >>= 5
	}
	sb.WriteByte(byte(value + 63))
}

func round(v float64) int64 {
	if v < 0 {
		return int64(v - 0.5)
	}
	return int64(v + 0.5)
}
