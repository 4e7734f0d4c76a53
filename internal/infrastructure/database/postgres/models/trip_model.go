package models

import "time"

// TripModel represents the database model for cached trips. The route is
// stored as an encoded polyline string; encoding/decoding happens in the
// repository at the storage boundary.
type TripModel struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement"`
	ExternalIntervalID *int64     `gorm:"uniqueIndex"`
	DeviceID           int64      `gorm:"not null;index"`
	DriverID           *int64     `gorm:"type:bigint;index"`
	StartTime          time.Time  `gorm:"not null;index"`
	EndTime            *time.Time `gorm:"type:timestamp"`
	DurationSecs       int64      `gorm:"not null;default:0"`
	DistanceKm         float64    `gorm:"type:decimal(10,2);not null;default:0"`
	AvgSpeed           *float64   `gorm:"type:decimal(8,2)"`
	MaxSpeed           *float64   `gorm:"type:decimal(8,2)"`
	StartLatitude      *float64   `gorm:"type:decimal(11,8)"`
	StartLongitude     *float64   `gorm:"type:decimal(11,8)"`
	EndLatitude        *float64   `gorm:"type:decimal(11,8)"`
	EndLongitude       *float64   `gorm:"type:decimal(11,8)"`
	RoutePolyline      *string    `gorm:"type:text"`
	Metadata           []byte     `gorm:"type:jsonb"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

func (TripModel) TableName() string {
	return "trips_cache"
}
