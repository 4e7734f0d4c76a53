package trip

import (
	"time"

	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/polyline"
)

// TripResponse is the API shape of a trip. The route is omitted from
// listings and loaded on demand through the route endpoint.
type TripResponse struct {
	ID                 int64          `json:"id"`
	ExternalIntervalID *int64         `json:"external_interval_id,omitempty"`
	DeviceID           int64          `json:"device_id"`
	DriverID           *int64         `json:"driver_id,omitempty"`
	StartTime          time.Time      `json:"start_time"`
	EndTime            *time.Time     `json:"end_time,omitempty"`
	DurationSecs       int64          `json:"duration_secs"`
	DistanceKm         float64        `json:"distance_km"`
	AvgSpeed           *float64       `json:"avg_speed,omitempty"`
	MaxSpeed           *float64       `json:"max_speed,omitempty"`
	StartLatitude      *float64       `json:"start_latitude,omitempty"`
	StartLongitude     *float64       `json:"start_longitude,omitempty"`
	EndLatitude        *float64       `json:"end_latitude,omitempty"`
	EndLongitude       *float64       `json:"end_longitude,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// ListResponse is a paginated trip listing.
type ListResponse struct {
	Trips    []*TripResponse `json:"trips"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// StatsResponse aggregates trips matching a filter.
type StatsResponse struct {
	TotalTrips    int64   `json:"total_trips"`
	TotalDistance float64 `json:"total_distance_km"`
	TotalDuration int64   `json:"total_duration_secs"`
	AvgSpeed      float64 `json:"avg_speed"`
	MaxSpeed      float64 `json:"max_speed"`
}

// RouteResponse is a trip's point sequence.
type RouteResponse struct {
	TripID int64            `json:"trip_id"`
	Route  []polyline.Point `json:"route"`
}

func toTripResponse(t *domainTrip.Trip) *TripResponse {
	return &TripResponse{
		ID:                 t.ID,
		ExternalIntervalID: t.ExternalIntervalID,
		DeviceID:           t.DeviceID,
		DriverID:           t.DriverID,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		DurationSecs:       t.DurationSecs,
		DistanceKm:         t.DistanceKm,
		AvgSpeed:           t.AvgSpeed,
		MaxSpeed:           t.MaxSpeed,
		StartLatitude:      t.StartLatitude,
		StartLongitude:     t.StartLongitude,
		EndLatitude:        t.EndLatitude,
		EndLongitude:       t.EndLongitude,
		Metadata:           t.Metadata,
	}
}
