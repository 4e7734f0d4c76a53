package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverModel represents the database model for drivers.
type DriverModel struct {
	ID            int64          `gorm:"primaryKey;autoIncrement"`
	Name          string         `gorm:"type:varchar(255);not null"`
	Phone         *string        `gorm:"type:varchar(50)"`
	Email         *string        `gorm:"type:varchar(255)"`
	LicenseNumber *string        `gorm:"type:varchar(100)"`
	RFIDCard      *string        `gorm:"type:varchar(100);uniqueIndex"`
	Notes         *string        `gorm:"type:text"`
	IsActive      bool           `gorm:"not null;default:true"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (DriverModel) TableName() string {
	return "drivers"
}

// DriverAssignmentModel represents the database model for driver-device
// assignment periods. Rows are closed, never deleted.
type DriverAssignmentModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	DeviceID  int64      `gorm:"not null;index"`
	DriverID  int64      `gorm:"not null;index"`
	StartTime time.Time  `gorm:"not null"`
	EndTime   *time.Time `gorm:"type:timestamp"`
	Notes     *string    `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (DriverAssignmentModel) TableName() string {
	return "driver_assignments"
}
