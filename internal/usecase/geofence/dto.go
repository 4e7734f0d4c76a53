package geofence

import (
	"time"

	domainGeofence "fleet-tracker/internal/domain/geofence"
	"fleet-tracker/internal/geo"
)

// CreateGeofenceRequest carries a new circle or polygon geofence. Circles
// need center plus radius; polygons need at least one ring of [lat, lon]
// pairs, which is closed automatically.
type CreateGeofenceRequest struct {
	Name        string      `json:"name" binding:"required" validate:"required,min=1,max=255"`
	Kind        string      `json:"kind" binding:"required" validate:"required,oneof=circle polygon"`
	Center      *geo.Point  `json:"center"`
	RadiusM     *float64    `json:"radius_m" validate:"omitempty,gt=0"`
	Ring        []geo.Point `json:"ring"`
	Color       *string     `json:"color" validate:"omitempty,max=20"`
	Description *string     `json:"description"`
}

// UpdateGeofenceRequest carries a partial geofence update.
type UpdateGeofenceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// GeofenceResponse is the API shape of a geofence.
type GeofenceResponse struct {
	ID          int64     `json:"id"`
	ExternalID  *int64    `json:"external_id,omitempty"`
	Name        string    `json:"name"`
	Shape       geo.Shape `json:"shape"`
	Color       string    `json:"color"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HitTestResponse lists the geofences covering a point.
type HitTestResponse struct {
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Matches   []*GeofenceResponse `json:"matches"`
}

func toGeofenceResponse(g *domainGeofence.Geofence) *GeofenceResponse {
	return &GeofenceResponse{
		ID:          g.ID,
		ExternalID:  g.ExternalID,
		Name:        g.Name,
		Shape:       g.Shape,
		Color:       g.Color,
		Description: g.Description,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
