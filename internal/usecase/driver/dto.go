package driver

import (
	"time"

	domainDriver "fleet-tracker/internal/domain/driver"
)

// CreateDriverRequest carries the fields for a new driver.
type CreateDriverRequest struct {
	Name          string  `json:"name" binding:"required" validate:"required,min=1,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Email         *string `json:"email" validate:"omitempty,email"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=100"`
	RFIDCard      *string `json:"rfid_card" validate:"omitempty,max=100"`
	Notes         *string `json:"notes"`
}

// UpdateDriverRequest carries a partial driver update. Nil fields are left
// unchanged.
type UpdateDriverRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Email         *string `json:"email" validate:"omitempty,email"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=100"`
	RFIDCard      *string `json:"rfid_card" validate:"omitempty,max=100"`
	Notes         *string `json:"notes"`
	IsActive      *bool   `json:"is_active"`
}

// DriverResponse is the API shape of a driver.
type DriverResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	LicenseNumber *string   `json:"license_number,omitempty"`
	RFIDCard      *string   `json:"rfid_card,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AssignmentResponse is the API shape of an assignment period.
type AssignmentResponse struct {
	ID        int64      `json:"id"`
	DeviceID  int64      `json:"device_id"`
	DriverID  int64      `json:"driver_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Active    bool       `json:"active"`
	Notes     *string    `json:"notes,omitempty"`
}

func toDriverResponse(d *domainDriver.Driver) *DriverResponse {
	return &DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Email:         d.Email,
		LicenseNumber: d.LicenseNumber,
		RFIDCard:      d.RFIDCard,
		Notes:         d.Notes,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toAssignmentResponse(a *domainDriver.Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:        a.ID,
		DeviceID:  a.DeviceID,
		DriverID:  a.DriverID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Active:    a.IsActive(),
		Notes:     a.Notes,
	}
}
