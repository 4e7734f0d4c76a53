package telematics

import "testing"

func TestNormalizeIntervalCanonicalFields(t *testing.T) {
	raw := Document{
		"id":        float64(42),
		"begin":     float64(1000),
		"end":       float64(1600),
		"distance":  12.5,
		"max.speed": 90.0,
		"avg.speed": 45.0,
		"route":     "_p~iF~ps|U",
	}

	iv := NormalizeInterval(raw)

	if iv.ID == nil || *iv.ID != 42 {
		t.Fatalf("ID = %v, want 42", iv.ID)
	}
	if iv.DurationSecs != 600 {
		t.Errorf("DurationSecs = %d, want 600", iv.DurationSecs)
	}
	if iv.DistanceKm != 12.5 {
		t.Errorf("DistanceKm = %v, want 12.5", iv.DistanceKm)
	}
	if iv.MaxSpeed != 90 {
		t.Errorf("MaxSpeed = %v, want 90", iv.MaxSpeed)
	}
	if iv.AvgSpeed != 45 {
		t.Errorf("AvgSpeed = %v, want 45", iv.AvgSpeed)
	}
	if iv.RoutePolyline == nil || *iv.RoutePolyline != "_p~iF~ps|U" {
		t.Errorf("RoutePolyline = %v, want _p~iF~ps|U", iv.RoutePolyline)
	}
}

func TestNormalizeIntervalAliases(t *testing.T) {
	cases := []struct {
		name string
		raw  Document
		want float64
		get  func(Interval) float64
	}{
		{
			name: "distance via mileage",
			raw:  Document{"mileage": 7.2},
			want: 7.2,
			get:  func(iv Interval) float64 { return iv.DistanceKm },
		},
		{
			name: "distance via odometer",
			raw:  Document{"odometer": 3.3},
			want: 3.3,
			get:  func(iv Interval) float64 { return iv.DistanceKm },
		},
		{
			name: "distance prefers first alias",
			raw:  Document{"distance": 1.0, "mileage": 2.0},
			want: 1.0,
			get:  func(iv Interval) float64 { return iv.DistanceKm },
		},
		{
			name: "max speed via speed.max",
			raw:  Document{"speed.max": 88.0},
			want: 88.0,
			get:  func(iv Interval) float64 { return iv.MaxSpeed },
		},
		{
			name: "avg speed via average_speed",
			raw:  Document{"average_speed": 51.0},
			want: 51.0,
			get:  func(iv Interval) float64 { return iv.AvgSpeed },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iv := NormalizeInterval(tc.raw)
			if got := tc.get(iv); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeIntervalContainerFallback(t *testing.T) {
	raw := Document{
		"counters": map[string]any{"distance": 5.5},
		"properties": map[string]any{
			"max_speed": 70.0,
		},
	}

	iv := NormalizeInterval(raw)
	if iv.DistanceKm != 5.5 {
		t.Errorf("DistanceKm = %v, want 5.5 from counters", iv.DistanceKm)
	}
	if iv.MaxSpeed != 70 {
		t.Errorf("MaxSpeed = %v, want 70 from properties", iv.MaxSpeed)
	}
}

func TestNormalizeIntervalMissingFields(t *testing.T) {
	iv := NormalizeInterval(Document{})

	if iv.ID != nil {
		t.Errorf("ID = %v, want nil", iv.ID)
	}
	if iv.DistanceKm != 0 || iv.MaxSpeed != 0 || iv.AvgSpeed != 0 {
		t.Errorf("numeric fields = %v/%v/%v, want zeros", iv.DistanceKm, iv.MaxSpeed, iv.AvgSpeed)
	}
	if iv.DurationSecs != 0 {
		t.Errorf("DurationSecs = %d, want 0", iv.DurationSecs)
	}
	if iv.RoutePolyline != nil {
		t.Errorf("RoutePolyline = %v, want nil", iv.RoutePolyline)
	}
}

func TestNormalizeIntervalDurationFallback(t *testing.T) {
	iv := NormalizeInterval(Document{"duration": float64(300)})
	if iv.DurationSecs != 300 {
		t.Errorf("DurationSecs = %d, want 300 from duration field", iv.DurationSecs)
	}

	// begin/end win over a conflicting duration field.
	iv = NormalizeInterval(Document{
		"begin":    float64(100),
		"end":      float64(400),
		"duration": float64(999),
	})
	if iv.DurationSecs != 300 {
		t.Errorf("DurationSecs = %d, want 300 derived from begin/end", iv.DurationSecs)
	}
}

func TestNormalizeIntervalPositions(t *testing.T) {
	raw := Document{
		"begin.position.latitude":  10.0,
		"begin.position.longitude": 20.0,
		"end_latitude":             11.0,
		"end_longitude":            21.0,
	}

	iv := NormalizeInterval(raw)
	if iv.StartLatitude == nil || *iv.StartLatitude != 10 {
		t.Errorf("StartLatitude = %v, want 10", iv.StartLatitude)
	}
	if iv.StartLongitude == nil || *iv.StartLongitude != 20 {
		t.Errorf("StartLongitude = %v, want 20", iv.StartLongitude)
	}
	if iv.EndLatitude == nil || *iv.EndLatitude != 11 {
		t.Errorf("EndLatitude = %v, want 11", iv.EndLatitude)
	}
	if iv.EndLongitude == nil || *iv.EndLongitude != 21 {
		t.Errorf("EndLongitude = %v, want 21", iv.EndLongitude)
	}
}
