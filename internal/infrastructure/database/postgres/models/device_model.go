package models

import (
	"time"

	"gorm.io/gorm"
)

// DeviceModel represents the database model for devices.
type DeviceModel struct {
	ID              int64          `gorm:"primaryKey;autoIncrement"`
	ExternalID      int64          `gorm:"not null;uniqueIndex"`
	Name            string         `gorm:"type:varchar(255);not null"`
	Ident           *string        `gorm:"type:varchar(255)"`
	DeviceTypeID    *int64         `gorm:"type:bigint"`
	CurrentDriverID *int64         `gorm:"type:bigint;index"`
	Status          string         `gorm:"type:varchar(20);not null;default:'offline'"`
	LastLatitude    *float64       `gorm:"type:decimal(11,8)"`
	LastLongitude   *float64       `gorm:"type:decimal(11,8)"`
	LastSpeed       *float64       `gorm:"type:decimal(8,2)"`
	LastMessageAt   *time.Time     `gorm:"type:timestamp"`
	Telemetry       []byte         `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
