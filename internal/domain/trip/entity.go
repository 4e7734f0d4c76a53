package trip

import (
	"time"

	"fleet-tracker/internal/polyline"
)

// Trip is a locally cached trip segment. Trips synced from upstream carry an
// external interval id (the upsert key); locally seeded trips may lack one.
// Distance is kilometers, speeds km/h, duration seconds.
type Trip struct {
	ID                 int64
	ExternalIntervalID *int64
	DeviceID           int64
	// DriverID is a snapshot of the device's current driver at sync time.
	// It is not corrected retroactively when assignments change.
	DriverID       *int64
	StartTime      time.Time
	EndTime        *time.Time
	DurationSecs   int64
	DistanceKm     float64
	AvgSpeed       *float64
	MaxSpeed       *float64
	StartLatitude  *float64
	StartLongitude *float64
	EndLatitude    *float64
	EndLongitude   *float64
	// Route is the canonical decoded point sequence. The storage layer
	// encodes it to a polyline on write and decodes on read.
	Route     []polyline.Point
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows trip listings.
type Filter struct {
	DeviceID *int64
	DriverID *int64
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// Stats aggregates trips matching a filter.
type Stats struct {
	TotalTrips    int64
	TotalDistance float64
	TotalDuration int64
	AvgSpeed      float64
	MaxSpeed      float64
}
