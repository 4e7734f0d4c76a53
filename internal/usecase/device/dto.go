package device

import (
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
)

// DeviceResponse is the API shape of a device. Status is re-derived from the
// last message time at response build time, so a device that went quiet since
// the last sync reads offline.
type DeviceResponse struct {
	ID              int64          `json:"id"`
	ExternalID      int64          `json:"external_id"`
	Name            string         `json:"name"`
	Ident           *string        `json:"ident,omitempty"`
	DeviceTypeID    *int64         `json:"device_type_id,omitempty"`
	CurrentDriverID *int64         `json:"current_driver_id,omitempty"`
	Status          string         `json:"status"`
	LastLatitude    *float64       `json:"last_latitude,omitempty"`
	LastLongitude   *float64       `json:"last_longitude,omitempty"`
	LastSpeed       *float64       `json:"last_speed,omitempty"`
	LastMessageAt   *time.Time     `json:"last_message_at,omitempty"`
	Telemetry       map[string]any `json:"telemetry,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PositionResponse is the compact map-marker shape of a device.
type PositionResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	Speed           *float64   `json:"speed,omitempty"`
	Status          string     `json:"status"`
	CurrentDriverID *int64     `json:"current_driver_id,omitempty"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
}

// AssignDriverRequest carries a driver assignment.
type AssignDriverRequest struct {
	DriverID int64 `json:"driver_id" binding:"required"`
}

func toDeviceResponse(d *domainDevice.Device, now time.Time) *DeviceResponse {
	return &DeviceResponse{
		ID:              d.ID,
		ExternalID:      d.ExternalID,
		Name:            d.Name,
		Ident:           d.Ident,
		DeviceTypeID:    d.DeviceTypeID,
		CurrentDriverID: d.CurrentDriverID,
		Status:          string(d.StatusAt(now)),
		LastLatitude:    d.LastLatitude,
		LastLongitude:   d.LastLongitude,
		LastSpeed:       d.LastSpeed,
		LastMessageAt:   d.LastMessageAt,
		Telemetry:       d.Telemetry,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
