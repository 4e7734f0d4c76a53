package telematics

import "testing"

func TestInt64Of(t *testing.T) {
	doc := Document{
		"device.id":   float64(7),
		"geofence.id": float64(9),
	}

	if v, ok := doc.Int64Of("device_id", "device.id"); !ok || v != 7 {
		t.Errorf("Int64Of device = %d, %v; want 7 via dotted fallback", v, ok)
	}
	if v, ok := doc.Int64Of("geofence_id", "geofence.id"); !ok || v != 9 {
		t.Errorf("Int64Of geofence = %d, %v; want 9 via dotted fallback", v, ok)
	}

	// First present key wins.
	both := Document{"device_id": float64(1), "device.id": float64(2)}
	if v, _ := both.Int64Of("device_id", "device.id"); v != 1 {
		t.Errorf("Int64Of = %d, want the first resolving key", v)
	}

	if _, ok := doc.Int64Of("missing", "also.missing"); ok {
		t.Error("Int64Of resolved a missing key")
	}
}
