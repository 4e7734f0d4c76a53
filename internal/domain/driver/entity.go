package driver

import "time"

// Driver is an operator-managed person who can be assigned to devices.
type Driver struct {
	ID            int64
	Name          string
	Phone         *string
	Email         *string
	LicenseNumber *string
	RFIDCard      *string // unique across drivers when present
	Notes         *string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Assignment links a driver to a device for a period. At most one assignment
// per device is open (EndTime nil) at any instant; opening a new one closes
// the previous within the same transaction. Assignments are never physically
// deleted.
type Assignment struct {
	ID        int64
	DeviceID  int64
	DriverID  int64
	StartTime time.Time
	EndTime   *time.Time
	Notes     *string
}

// IsActive reports whether the assignment is still open.
func (a *Assignment) IsActive() bool {
	return a.EndTime == nil
}
