package device

import (
	"testing"
	"time"
)

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name          string
		lastMessageAt *time.Time
		want          Status
	}{
		{"never reported", nil, StatusOffline},
		{"4 minutes old", at(4 * time.Minute), StatusOnline},
		{"exactly 5 minutes old", at(5 * time.Minute), StatusOnline},
		{"6 minutes old", at(6 * time.Minute), StatusOffline},
		{"just now", at(0), StatusOnline},
		{"future timestamp", at(-time.Minute), StatusOnline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusAt(tt.lastMessageAt, now); got != tt.want {
				t.Errorf("StatusAt(%v) = %v, want %v", tt.lastMessageAt, got, tt.want)
			}
		})
	}
}

func TestHasLocation(t *testing.T) {
	lat, lon := 48.85, 2.29
	d := &Device{}
	if d.HasLocation() {
		t.Error("device without coordinates should have no location")
	}
	d.LastLatitude = &lat
	d.LastLongitude = &lon
	if !d.HasLocation() {
		t.Error("device with coordinates should have a location")
	}
}
