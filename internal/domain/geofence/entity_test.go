package geofence

import (
	"testing"

	"fleet-tracker/internal/geo"
)

func circle(id int64, lat, lon, radius float64) *Geofence {
	return &Geofence{
		ID: id,
		Shape: geo.Shape{
			Kind: geo.ShapeCircle,
			Circle: &geo.Circle{
				Center:       geo.Point{Lat: lat, Lon: lon},
				RadiusMeters: radius,
			},
		},
	}
}

func TestContaining(t *testing.T) {
	candidates := []*Geofence{
		circle(1, 10, 10, 1000),
		circle(2, 50, 50, 1000),
		circle(3, 10.001, 10.001, 1000),
	}

	matches := Containing(geo.Point{Lat: 10, Lon: 10}, candidates)
	if len(matches) != 2 {
		t.Fatalf("Containing() returned %d geofences, want 2", len(matches))
	}
	if matches[0].ID != 1 || matches[1].ID != 3 {
		t.Errorf("matched ids %d, %d; want 1, 3", matches[0].ID, matches[1].ID)
	}
}

func TestContainingEmpty(t *testing.T) {
	if matches := Containing(geo.Point{Lat: 0, Lon: 0}, nil); len(matches) != 0 {
		t.Errorf("Containing() on nil candidates = %v, want empty", matches)
	}
}
