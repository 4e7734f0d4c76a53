package models

import (
	"time"

	"gorm.io/gorm"
)

// GeofenceModel represents the database model for geofences. The shape is
// stored in the internal (lat, lon) representation as JSON.
type GeofenceModel struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	ExternalID  *int64         `gorm:"uniqueIndex"`
	Name        string         `gorm:"type:varchar(255);not null"`
	ShapeKind   string         `gorm:"type:varchar(20);not null"`
	Shape       []byte         `gorm:"type:jsonb;not null"`
	Color       string         `gorm:"type:varchar(20);not null;default:'#3B82F6'"`
	Description *string        `gorm:"type:text"`
	IsActive    bool           `gorm:"not null;default:true"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (GeofenceModel) TableName() string {
	return "geofences"
}
